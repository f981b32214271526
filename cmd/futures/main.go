// futures 主程序
// 功能：Binance U 本位合约下单机器人，提供命令行、交互式控制台与 Web API 三种入口
// 架构：基于 DDD，命令行由 cobra 驱动，Web API 基于 gin
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wyfcoding/futurestrading/internal/order/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewApp(loadRuntime).Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
