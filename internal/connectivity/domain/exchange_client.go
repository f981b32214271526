package domain

import (
	"context"
)

// ExchangeClient 交易所 REST 边界，每个方法恰好发起一次远程调用，不做重试。
// 远程失败统一以 *RemoteError 返回。
type ExchangeClient interface {
	Ping(ctx context.Context) error
	ExchangeInfo(ctx context.Context) (*ExchangeInfo, error)
	CreateOrder(ctx context.Context, params OrderParams) (*OrderResponse, error)
	// GetOrder orderID 为纯数字时按交易所订单号查询，否则按 clientOrderId 查询
	GetOrder(ctx context.Context, symbol, orderID string) (*OrderResponse, error)
	CancelOrder(ctx context.Context, symbol, orderID string) (*OrderResponse, error)
	TickerPrice(ctx context.Context, symbol string) (*TickerPrice, error)
}
