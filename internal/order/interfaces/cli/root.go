// Package cli 提供命令行与交互式控制台前端
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/wyfcoding/futurestrading/internal/order/application"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "configs/futures/config.toml"

// Options 全局命令行参数
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Runtime 进程级依赖，由入口负责构建与释放
type Runtime interface {
	OrderService() *application.OrderService
	// Serve 启动 Web API，ctx 取消后优雅关停
	Serve(ctx context.Context) error
	Close() error
}

// Loader 按参数构建 Runtime
type Loader func(ctx context.Context, opts Options) (Runtime, error)

type rootState struct {
	opts    Options
	load    Loader
	runtime Runtime
}

func (s *rootState) service() *application.OrderService {
	return s.runtime.OrderService()
}

func (s *rootState) close() error {
	if s.runtime == nil {
		return nil
	}
	rt := s.runtime
	s.runtime = nil
	return rt.Close()
}

// App 命令行应用
type App struct {
	root  *cobra.Command
	state *rootState
}

// NewApp 创建命令行应用
func NewApp(load Loader) *App {
	state := &rootState{load: load}

	root := &cobra.Command{
		Use:           "futures",
		Short:         "Binance USDⓈ-M futures trading bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := state.load(cmd.Context(), state.opts)
			if err != nil {
				return err
			}
			state.runtime = rt
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&state.opts.ConfigPath, "config", "c", DefaultConfigPath, "config file path")
	root.PersistentFlags().BoolVarP(&state.opts.Verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(
		newOrderCommand(state),
		newStatusCommand(state),
		newCancelCommand(state),
		newSymbolsCommand(state),
		newPingCommand(state),
		newPriceCommand(state),
		newHistoryCommand(state),
		newStatsCommand(state),
		newLogsCommand(state),
		newRefreshCommand(state),
		newServeCommand(state),
		newConsoleCommand(state),
	)
	return &App{root: root, state: state}
}

// Command 返回根命令
func (a *App) Command() *cobra.Command {
	return a.root
}

// Execute 执行命令，无论成功与否都会释放 Runtime
func (a *App) Execute(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)
	return errors.Join(err, a.state.close())
}
