package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/futurestrading/internal/order/application"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
)

const (
	defaultConsoleSymbol = "BTCUSDT"
	consoleHistoryLimit  = 10
)

// errBack 用户在子菜单中放弃输入，返回主菜单
var errBack = errors.New("back to menu")

// prompter 交互输入抽象，测试中以脚本替换
type prompter interface {
	Select(label string, items []string) (int, error)
	Input(label, def string, validate func(string) error) (string, error)
	Confirm(label string) (bool, error)
}

type promptUI struct {
	in  io.ReadCloser
	out io.WriteCloser
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newPromptUI(in io.Reader, out io.Writer) prompter {
	return &promptUI{in: io.NopCloser(in), out: nopWriteCloser{out}}
}

func (p *promptUI) Select(label string, items []string) (int, error) {
	s := promptui.Select{Label: label, Items: items, Size: len(items), Stdin: p.in, Stdout: p.out}
	idx, _, err := s.Run()
	return idx, err
}

func (p *promptUI) Input(label, def string, validate func(string) error) (string, error) {
	pr := promptui.Prompt{Label: label, Default: def, Validate: validate, Stdin: p.in, Stdout: p.out}
	v, err := pr.Run()
	return strings.TrimSpace(v), err
}

func (p *promptUI) Confirm(label string) (bool, error) {
	pr := promptui.Prompt{Label: label, IsConfirm: true, Stdin: p.in, Stdout: p.out}
	if _, err := pr.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type menuItem struct {
	label string
	run   func(ctx context.Context) error
}

// console 交互式交易控制台
type console struct {
	svc    *application.OrderService
	prompt prompter
	out    io.Writer
	items  []menuItem
}

func newConsole(svc *application.OrderService, p prompter, out io.Writer) *console {
	c := &console{svc: svc, prompt: p, out: out}
	c.items = []menuItem{
		{"Place Market Order", c.placeMarket},
		{"Place Limit Order", c.placeLimit},
		{"Place Stop Order (with Limit)", c.placeStopLimit},
		{"Check Order Status", c.checkStatus},
		{"Cancel Order", c.cancel},
		{"View Symbol Info", c.symbolInfo},
		{"Test Connection", c.testConnection},
		{"View Order History", c.history},
		{"View Statistics", c.statistics},
		{"Exit", nil},
	}
	return c
}

// Run 主循环，选择 Exit 或中断输入时退出
func (c *console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Binance Futures Trading Bot - Interactive Mode")

	labels := make([]string, len(c.items))
	for i, item := range c.items {
		labels[i] = item.label
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		idx, err := c.prompt.Select("Select an option", labels)
		if err != nil {
			if isInterrupt(err) {
				fmt.Fprintln(c.out, "Interrupted by user")
				return nil
			}
			return err
		}
		item := c.items[idx]
		if item.run == nil {
			fmt.Fprintln(c.out, "Goodbye! Happy trading!")
			return nil
		}

		fmt.Fprintf(c.out, "\n=== %s ===\n", item.label)
		if err := item.run(ctx); err != nil {
			switch {
			case errors.Is(err, errBack), isInterrupt(err):
				fmt.Fprintln(c.out, "Cancelled")
			default:
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
		}
	}
}

func isInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

func (c *console) placeMarket(ctx context.Context) error {
	in := application.PlaceOrderInput{Type: domain.OrderTypeMarket.String()}
	if err := c.askBase(&in); err != nil {
		return err
	}
	return c.submit(ctx, in, fmt.Sprintf("Confirm %s %s %s at MARKET price", in.Side, in.Quantity, in.Symbol))
}

func (c *console) placeLimit(ctx context.Context) error {
	in := application.PlaceOrderInput{Type: domain.OrderTypeLimit.String()}
	if err := c.askBase(&in); err != nil {
		return err
	}
	var err error
	if in.Price, err = c.prompt.Input("Price", "", validatePositive); err != nil {
		return err
	}
	if in.TimeInForce, err = c.askTimeInForce(); err != nil {
		return err
	}
	return c.submit(ctx, in, fmt.Sprintf("Confirm %s %s %s at %s (%s)", in.Side, in.Quantity, in.Symbol, in.Price, in.TimeInForce))
}

func (c *console) placeStopLimit(ctx context.Context) error {
	fmt.Fprintln(c.out, "STOP order: triggers at stop price, then places a limit order at limit price")
	in := application.PlaceOrderInput{Type: domain.OrderTypeStop.String()}
	if err := c.askBase(&in); err != nil {
		return err
	}
	var err error
	if in.StopPrice, err = c.prompt.Input("Stop Price (trigger)", "", validatePositive); err != nil {
		return err
	}
	if in.Price, err = c.prompt.Input("Limit Price (execution)", "", validatePositive); err != nil {
		return err
	}
	if in.TimeInForce, err = c.askTimeInForce(); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Order Summary:")
	fmt.Fprintf(c.out, "  When price reaches %s\n", in.StopPrice)
	fmt.Fprintf(c.out, "  Place %s order for %s %s\n", in.Side, in.Quantity, in.Symbol)
	fmt.Fprintf(c.out, "  At limit price %s (%s)\n", in.Price, in.TimeInForce)
	return c.submit(ctx, in, "Confirm this stop order")
}

func (c *console) askBase(in *application.PlaceOrderInput) error {
	var err error
	if in.Symbol, err = c.askSymbol(); err != nil {
		return err
	}
	sides := []string{domain.SideBuy.String(), domain.SideSell.String()}
	idx, err := c.prompt.Select("Side", sides)
	if err != nil {
		return err
	}
	in.Side = sides[idx]
	in.Quantity, err = c.prompt.Input("Quantity", "", validatePositive)
	return err
}

func (c *console) askSymbol() (string, error) {
	s, err := c.prompt.Input("Symbol", defaultConsoleSymbol, validateNonEmpty)
	return strings.ToUpper(s), err
}

func (c *console) askTimeInForce() (string, error) {
	choices := []string{domain.TimeInForceGTC.String(), domain.TimeInForceIOC.String(), domain.TimeInForceFOK.String()}
	idx, err := c.prompt.Select("Time in Force", choices)
	if err != nil {
		return "", err
	}
	return choices[idx], nil
}

func (c *console) submit(ctx context.Context, in application.PlaceOrderInput, question string) error {
	req, err := in.ToRequest()
	if err != nil {
		return err
	}
	ok, err := c.prompt.Confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		return errBack
	}
	resp, err := c.svc.PlaceOrder(ctx, req, domain.InterfaceTerminal)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Order placed successfully!")
	return printOrderResponse(c.out, resp)
}

func (c *console) askOrderRef() (string, string, error) {
	symbol, err := c.askSymbol()
	if err != nil {
		return "", "", err
	}
	orderID, err := c.prompt.Input("Order ID", "", validateNonEmpty)
	return symbol, orderID, err
}

func (c *console) checkStatus(ctx context.Context) error {
	symbol, orderID, err := c.askOrderRef()
	if err != nil {
		return err
	}
	resp, err := c.svc.GetOrderStatus(ctx, symbol, orderID, domain.InterfaceTerminal)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Order found!")
	return printOrderResponse(c.out, resp)
}

func (c *console) cancel(ctx context.Context) error {
	symbol, orderID, err := c.askOrderRef()
	if err != nil {
		return err
	}
	ok, err := c.prompt.Confirm(fmt.Sprintf("Confirm cancel order %s for %s", orderID, symbol))
	if err != nil {
		return err
	}
	if !ok {
		return errBack
	}
	resp, err := c.svc.CancelOrder(ctx, symbol, orderID, domain.InterfaceTerminal)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Order cancelled successfully!")
	return printOrderResponse(c.out, resp)
}

func (c *console) symbolInfo(ctx context.Context) error {
	symbol, err := c.askSymbol()
	if err != nil {
		return err
	}
	rules, err := c.svc.SymbolRules(ctx, symbol)
	if err != nil {
		return err
	}
	return printSymbolRules(c.out, rules)
}

func (c *console) testConnection(ctx context.Context) error {
	if err := c.svc.Ping(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Fprintln(c.out, "Connection successful! API is reachable.")
	return nil
}

func (c *console) history(ctx context.Context) error {
	orders, err := c.svc.History(ctx, domain.HistoryQuery{Limit: consoleHistoryLimit})
	if err != nil {
		return err
	}
	return printOrders(c.out, orders)
}

func (c *console) statistics(ctx context.Context) error {
	stats, err := c.svc.Statistics(ctx)
	if err != nil {
		return err
	}
	return printStatistics(c.out, stats)
}

func validateNonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a number")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
}
