package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/metrics"
	"github.com/wyfcoding/futurestrading/pkg/utils"
)

// ErrMissingCredentials 签名接口需要 API key 与 secret
var ErrMissingCredentials = errors.New("api key and secret are required for signed endpoints")

const (
	pathPing         = "/fapi/v1/ping"
	pathExchangeInfo = "/fapi/v1/exchangeInfo"
	pathOrder        = "/fapi/v1/order"
	pathTickerPrice  = "/fapi/v1/ticker/price"
)

// Config Binance U 本位合约 REST 客户端配置
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	RecvWindow int
	Timeout    time.Duration
}

// BinanceFuturesClient 基于 resty 的交易所客户端，不做重试
type BinanceFuturesClient struct {
	http       *resty.Client
	apiKey     string
	apiSecret  string
	recvWindow int
	metrics    *metrics.Metrics
	now        func() time.Time
}

var _ domain.ExchangeClient = (*BinanceFuturesClient)(nil)

// NewBinanceFuturesClient 创建客户端，m 可以为 nil
func NewBinanceFuturesClient(cfg Config, m *metrics.Metrics) *BinanceFuturesClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader("X-MBX-APIKEY", cfg.APIKey)
	}

	return &BinanceFuturesClient{
		http:       httpClient,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		recvWindow: cfg.RecvWindow,
		metrics:    m,
		now:        time.Now,
	}
}

func (c *BinanceFuturesClient) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", http.MethodGet, pathPing, nil, false, nil)
}

func (c *BinanceFuturesClient) ExchangeInfo(ctx context.Context) (*domain.ExchangeInfo, error) {
	var info domain.ExchangeInfo
	if err := c.call(ctx, "exchange_info", http.MethodGet, pathExchangeInfo, nil, false, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *BinanceFuturesClient) CreateOrder(ctx context.Context, params domain.OrderParams) (*domain.OrderResponse, error) {
	var resp domain.OrderResponse
	if err := c.call(ctx, "create_order", http.MethodPost, pathOrder, params.Values(), true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BinanceFuturesClient) GetOrder(ctx context.Context, symbol, orderID string) (*domain.OrderResponse, error) {
	var resp domain.OrderResponse
	if err := c.call(ctx, "get_order", http.MethodGet, pathOrder, orderQuery(symbol, orderID), true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BinanceFuturesClient) CancelOrder(ctx context.Context, symbol, orderID string) (*domain.OrderResponse, error) {
	var resp domain.OrderResponse
	if err := c.call(ctx, "cancel_order", http.MethodDelete, pathOrder, orderQuery(symbol, orderID), true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BinanceFuturesClient) TickerPrice(ctx context.Context, symbol string) (*domain.TickerPrice, error) {
	var ticker domain.TickerPrice
	params := url.Values{}
	params.Set("symbol", symbol)
	if err := c.call(ctx, "ticker_price", http.MethodGet, pathTickerPrice, params, false, &ticker); err != nil {
		return nil, err
	}
	return &ticker, nil
}

func orderQuery(symbol, orderID string) url.Values {
	params := url.Values{}
	params.Set("symbol", symbol)
	if utils.IsDigits(orderID) {
		params.Set("orderId", orderID)
	} else {
		params.Set("origClientOrderId", orderID)
	}
	return params
}

// call 发起一次请求并记录耗时指标
func (c *BinanceFuturesClient) call(ctx context.Context, op, method, path string, params url.Values, signed bool, out any) error {
	start := time.Now()
	err := c.do(ctx, op, method, path, params, signed, out)
	c.metrics.ObserveRemoteCall(op, err, time.Since(start))
	if err != nil {
		logger.Debug(ctx, "Exchange call failed", "op", op, "error", err)
	}
	return err
}

func (c *BinanceFuturesClient) do(ctx context.Context, op, method, path string, params url.Values, signed bool, out any) error {
	query, err := c.encode(params, signed)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}

	target := path
	if query != "" {
		target += "?" + query
	}

	resp, err := c.http.R().SetContext(ctx).Execute(method, target)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}

	body := resp.Body()
	if resp.IsError() {
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return &domain.RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Code:       apiErr.Code,
			Message:    apiErr.Msg,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.RemoteError{Op: op, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if orderResp, ok := out.(*domain.OrderResponse); ok {
		orderResp.Raw = append(json.RawMessage(nil), body...)
	}
	return nil
}

// encode 生成查询串，签名请求追加 timestamp、recvWindow 与 signature，signature 必须位于末尾
func (c *BinanceFuturesClient) encode(params url.Values, signed bool) (string, error) {
	if params == nil {
		params = url.Values{}
	}
	if !signed {
		return params.Encode(), nil
	}
	if c.apiKey == "" || c.apiSecret == "" {
		return "", ErrMissingCredentials
	}

	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	if c.recvWindow > 0 {
		params.Set("recvWindow", strconv.Itoa(c.recvWindow))
	}
	query := params.Encode()
	return query + "&signature=" + utils.HMACSHA256Hex(c.apiSecret, query), nil
}
