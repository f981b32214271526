package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/order/application"
	"github.com/wyfcoding/futurestrading/internal/order/infrastructure/repository"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/pkg/db"
)

type stubExchange struct {
	resp     *exchange.OrderResponse
	err      error
	created  []exchange.OrderParams
	canceled int
}

func (s *stubExchange) Ping(context.Context) error { return s.err }

func (s *stubExchange) ExchangeInfo(context.Context) (*exchange.ExchangeInfo, error) {
	return &exchange.ExchangeInfo{}, nil
}

func (s *stubExchange) CreateOrder(_ context.Context, p exchange.OrderParams) (*exchange.OrderResponse, error) {
	s.created = append(s.created, p)
	return s.resp, s.err
}

func (s *stubExchange) GetOrder(context.Context, string, string) (*exchange.OrderResponse, error) {
	return s.resp, s.err
}

func (s *stubExchange) CancelOrder(context.Context, string, string) (*exchange.OrderResponse, error) {
	s.canceled++
	return s.resp, s.err
}

func (s *stubExchange) TickerPrice(_ context.Context, symbol string) (*exchange.TickerPrice, error) {
	return &exchange.TickerPrice{Symbol: symbol, Price: decimal.RequireFromString("43210.50"), Time: 1700000000000}, nil
}

var btcRules = &refdomain.InstrumentRules{
	Symbol:     "BTCUSDT",
	Status:     refdomain.StatusTrading,
	BaseAsset:  "BTC",
	QuoteAsset: "USDT",
	TickSize:   decimal.RequireFromString("0.10"),
	StepSize:   decimal.RequireFromString("0.001"),
	MinQty:     decimal.RequireFromString("0.001"),
}

type stubRules struct{ refreshed int }

func (*stubRules) GetRules(_ context.Context, symbol string) (*refdomain.InstrumentRules, error) {
	if symbol != "BTCUSDT" {
		return nil, refdomain.ErrUnknownSymbol
	}
	return btcRules, nil
}

func (r *stubRules) Refresh(context.Context) error {
	r.refreshed++
	return nil
}

func (*stubRules) Symbols(context.Context) ([]*refdomain.InstrumentRules, error) {
	return []*refdomain.InstrumentRules{btcRules}, nil
}

type fakeRuntime struct {
	svc    *application.OrderService
	served bool
	closed int
}

func (f *fakeRuntime) OrderService() *application.OrderService { return f.svc }

func (f *fakeRuntime) Serve(context.Context) error {
	f.served = true
	return nil
}

func (f *fakeRuntime) Close() error {
	f.closed++
	return nil
}

func newService(t *testing.T, ex *stubExchange, rules *stubRules) *application.OrderService {
	t.Helper()
	d, err := db.Init(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "cli.db")})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(d))
	t.Cleanup(func() { _ = d.Close() })
	return application.NewOrderService(ex, rules, repository.NewOrderRepository(d), repository.NewActivityRepository(d), nil, nil)
}

func newResponse() *exchange.OrderResponse {
	return &exchange.OrderResponse{
		OrderID: 4001, Symbol: "BTCUSDT", Status: "NEW", ExecutedQty: "0",
		Raw: json.RawMessage(`{"orderId":4001,"symbol":"BTCUSDT","status":"NEW","type":"LIMIT","side":"BUY","price":"43000.0","origQty":"0.010","updateTime":1700000000000}`),
	}
}

func runApp(t *testing.T, rt *fakeRuntime, args ...string) (string, error) {
	t.Helper()
	app := NewApp(func(context.Context, Options) (Runtime, error) { return rt, nil })
	var out bytes.Buffer
	app.Command().SetOut(&out)
	app.Command().SetErr(&out)
	err := app.Execute(context.Background(), args)
	return out.String(), err
}

func TestOrderCommand(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	rt := &fakeRuntime{svc: newService(t, ex, &stubRules{})}

	out, err := runApp(t, rt, "order", "--symbol", "BTCUSDT", "--side", "BUY", "--type", "LIMIT",
		"--quantity", "0.0105", "--price", "43000.04")
	require.NoError(t, err)
	assert.Contains(t, out, "Order placed successfully")
	assert.Contains(t, out, "4001")
	assert.Contains(t, out, "1700000000000")
	assert.Equal(t, 1, rt.closed)

	require.Len(t, ex.created, 1)
	assert.Equal(t, "43000", ex.created[0].Values().Get("price"))
	assert.Equal(t, "0.01", ex.created[0].Values().Get("quantity"))
}

func TestOrderCommand_ValidationError(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	rt := &fakeRuntime{svc: newService(t, ex, &stubRules{})}

	_, err := runApp(t, rt, "order", "--symbol", "BTCUSDT", "--side", "BUY", "--type", "LIMIT", "--quantity", "0.01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
	assert.Empty(t, ex.created)
}

func TestOrderCommand_MissingFlag(t *testing.T) {
	rt := &fakeRuntime{svc: newService(t, &stubExchange{}, &stubRules{})}

	_, err := runApp(t, rt, "order", "--symbol", "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestLoaderErrorIsReturned(t *testing.T) {
	boom := errors.New("config not found")
	app := NewApp(func(context.Context, Options) (Runtime, error) { return nil, boom })
	app.Command().SetOut(&bytes.Buffer{})

	err := app.Execute(context.Background(), []string{"ping"})
	assert.ErrorIs(t, err, boom)
}

func TestLoaderReceivesOptions(t *testing.T) {
	var got Options
	rt := &fakeRuntime{svc: newService(t, &stubExchange{}, &stubRules{})}
	app := NewApp(func(_ context.Context, opts Options) (Runtime, error) {
		got = opts
		return rt, nil
	})
	app.Command().SetOut(&bytes.Buffer{})

	require.NoError(t, app.Execute(context.Background(), []string{"ping", "-c", "custom.toml", "-v"}))
	assert.Equal(t, Options{ConfigPath: "custom.toml", Verbose: true}, got)
}

func TestStatusAndCancelCommands(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	rt := &fakeRuntime{svc: newService(t, ex, &stubRules{})}

	out, err := runApp(t, rt, "status", "--symbol", "BTCUSDT", "--orderId", "4001")
	require.NoError(t, err)
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "NEW")

	out, err = runApp(t, rt, "cancel", "--symbol", "BTCUSDT", "--orderId", "4001")
	require.NoError(t, err)
	assert.Contains(t, out, "Order cancelled successfully")
	assert.Equal(t, 1, ex.canceled)
}

func TestCancelCommand_RemoteError(t *testing.T) {
	remote := &exchange.RemoteError{StatusCode: 400, Code: -2011, Message: "Unknown order sent."}
	ex := &stubExchange{err: remote}
	rt := &fakeRuntime{svc: newService(t, ex, &stubRules{})}

	_, err := runApp(t, rt, "cancel", "--symbol", "BTCUSDT", "--orderId", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown order")
}

func TestInfoCommands(t *testing.T) {
	rules := &stubRules{}
	ex := &stubExchange{resp: newResponse()}
	rt := &fakeRuntime{svc: newService(t, ex, rules)}

	out, err := runApp(t, rt, "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "Pong! Connectivity is OK.")

	out, err = runApp(t, rt, "symbols", "--symbol", "btcusdt")
	require.NoError(t, err)
	assert.Contains(t, out, "Tick Size")
	assert.Contains(t, out, "0.10")

	out, err = runApp(t, rt, "symbols")
	require.NoError(t, err)
	assert.Contains(t, out, "1 tradable symbols")

	out, err = runApp(t, rt, "price", "--symbol", "BTCUSDT")
	require.NoError(t, err)
	assert.Contains(t, out, "BTCUSDT 43210.5")

	out, err = runApp(t, rt, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "1 tradable symbols")
	assert.Equal(t, 1, rules.refreshed)
}

func TestHistoryStatsAndLogs(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	rt := &fakeRuntime{svc: newService(t, ex, &stubRules{})}

	out, err := runApp(t, rt, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No orders found")

	_, err = runApp(t, rt, "order", "--symbol", "BTCUSDT", "--side", "SELL", "--type", "MARKET", "--quantity", "0.01")
	require.NoError(t, err)

	out, err = runApp(t, rt, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "4001")
	assert.Contains(t, out, "MARKET")

	out, err = runApp(t, rt, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Orders")

	out, err = runApp(t, rt, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "place_order")
	assert.Contains(t, out, "cli")
}

func TestServeCommand(t *testing.T) {
	rt := &fakeRuntime{svc: newService(t, &stubExchange{}, &stubRules{})}
	_, err := runApp(t, rt, "serve")
	require.NoError(t, err)
	assert.True(t, rt.served)
	assert.Equal(t, 1, rt.closed)
}

type step struct {
	selectIdx int
	input     string
	confirm   bool
	err       error
}

// scriptedPrompter 按顺序回放预设答案
type scriptedPrompter struct {
	t     *testing.T
	steps []step
}

func (p *scriptedPrompter) next() step {
	p.t.Helper()
	require.NotEmpty(p.t, p.steps, "prompt script exhausted")
	s := p.steps[0]
	p.steps = p.steps[1:]
	return s
}

func (p *scriptedPrompter) Select(string, []string) (int, error) {
	s := p.next()
	return s.selectIdx, s.err
}

func (p *scriptedPrompter) Input(_, def string, _ func(string) error) (string, error) {
	s := p.next()
	if s.input == "" && s.err == nil {
		return def, nil
	}
	return s.input, s.err
}

func (p *scriptedPrompter) Confirm(string) (bool, error) {
	s := p.next()
	return s.confirm, s.err
}

const (
	menuMarket = iota
	menuLimit
	menuStop
	menuStatus
	menuCancel
	menuSymbol
	menuPing
	menuHistory
	menuStats
	menuExit
)

func TestConsole_MarketOrder(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	p := &scriptedPrompter{t: t, steps: []step{
		{selectIdx: menuMarket},
		{input: ""}, // 默认 BTCUSDT
		{selectIdx: 1},
		{input: "0.0104"},
		{confirm: true},
		{selectIdx: menuExit},
	}}
	var out bytes.Buffer
	c := newConsole(newService(t, ex, &stubRules{}), p, &out)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "Order placed successfully!")
	assert.Contains(t, out.String(), "Goodbye")

	require.Len(t, ex.created, 1)
	v := ex.created[0].Values()
	assert.Equal(t, "SELL", v.Get("side"))
	assert.Equal(t, "MARKET", v.Get("type"))
	assert.Equal(t, "0.01", v.Get("quantity"))
}

func TestConsole_StopLimitOrder(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	p := &scriptedPrompter{t: t, steps: []step{
		{selectIdx: menuStop},
		{input: "btcusdt"},
		{selectIdx: 0},
		{input: "0.01"},
		{input: "44000.05"},
		{input: "44100"},
		{selectIdx: 2},
		{confirm: true},
		{selectIdx: menuExit},
	}}
	var out bytes.Buffer
	c := newConsole(newService(t, ex, &stubRules{}), p, &out)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "Order Summary:")

	require.Len(t, ex.created, 1)
	v := ex.created[0].Values()
	assert.Equal(t, "STOP", v.Get("type"))
	assert.Equal(t, "44000.05", v.Get("stopPrice"))
	assert.Equal(t, "44100", v.Get("price"))
	assert.Equal(t, "FOK", v.Get("timeInForce"))
}

func TestConsole_DeclinedCancelAndErrorsKeepLooping(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	p := &scriptedPrompter{t: t, steps: []step{
		{selectIdx: menuCancel},
		{input: "BTCUSDT"},
		{input: "4001"},
		{confirm: false},
		{selectIdx: menuSymbol},
		{input: "DOGEUSDT"},
		{selectIdx: menuPing},
		{selectIdx: menuStats},
		{selectIdx: menuHistory},
		{selectIdx: menuLimit},
		{input: "", err: promptui.ErrInterrupt},
		{selectIdx: 0, err: promptui.ErrEOF},
	}}
	var out bytes.Buffer
	c := newConsole(newService(t, ex, &stubRules{}), p, &out)

	require.NoError(t, c.Run(context.Background()))
	assert.Zero(t, ex.canceled)
	s := out.String()
	assert.Contains(t, s, "Cancelled")
	assert.Contains(t, s, "Error:")
	assert.Contains(t, s, "Connection successful!")
	assert.Contains(t, s, "Success Rate")
	assert.Contains(t, s, "No orders found")
	assert.Contains(t, s, "Interrupted by user")
	assert.Empty(t, p.steps)
}

func TestConsole_StatusShowsResponse(t *testing.T) {
	ex := &stubExchange{resp: newResponse()}
	p := &scriptedPrompter{t: t, steps: []step{
		{selectIdx: menuStatus},
		{input: "BTCUSDT"},
		{input: "4001"},
		{selectIdx: menuExit},
	}}
	var out bytes.Buffer
	c := newConsole(newService(t, ex, &stubRules{}), p, &out)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "Order found!")
	assert.Contains(t, out.String(), "origQty")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validatePositive("0.5"))
	assert.Error(t, validatePositive("0"))
	assert.Error(t, validatePositive("abc"))
	assert.NoError(t, validateNonEmpty("x"))
	assert.Error(t, validateNonEmpty("  "))
}

func TestOrderTypeNames(t *testing.T) {
	names := orderTypeNames()
	assert.True(t, strings.HasPrefix(names, "LIMIT, MARKET, STOP"))
	assert.Contains(t, names, "TAKE_PROFIT_MARKET")
}
