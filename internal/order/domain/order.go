// Package domain 包含订单下单、校验与生命周期记录的领域模型
package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
)

// OrderStatus 交易所报告的订单状态
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// PendingOrderID 交易所尚未返回订单号时的占位
const PendingOrderID = "pending"

// Order 本地订单记录，按交易所订单号查找，永不删除
type Order struct {
	// 本地自增 ID
	ID uint64
	// 交易所订单号
	ExchangeOrderID string
	// 客户端订单号
	ClientOrderID string
	Symbol        string
	Side          string
	Type          string
	// 请求数量（已按 stepSize 取整）
	Quantity    decimal.Decimal
	Price       *decimal.Decimal
	StopPrice   *decimal.Decimal
	TimeInForce string
	ReduceOnly  bool
	Status      OrderStatus
	// 已成交数量
	ExecutedQty decimal.Decimal
	// 成交均价
	AvgPrice *decimal.Decimal
	// 最近一次交易所响应原文
	RawResponse json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder 由已提交的参数与交易所响应创建订单记录，响应缺失时状态为 PENDING
func NewOrder(params exchange.OrderParams, resp *exchange.OrderResponse) *Order {
	o := &Order{
		ExchangeOrderID: PendingOrderID,
		ClientOrderID:   params.NewClientOrderID,
		Symbol:          params.Symbol,
		Side:            params.Side,
		Type:            params.Type,
		Quantity:        params.Quantity,
		Price:           params.Price,
		StopPrice:       params.StopPrice,
		TimeInForce:     params.TimeInForce,
		ReduceOnly:      params.ReduceOnly,
		Status:          OrderStatusPending,
		ExecutedQty:     decimal.Zero,
	}
	if id := resp.ExchangeOrderID(); id != "" {
		o.ExchangeOrderID = id
	}
	if resp != nil && resp.ClientOrderID != "" {
		o.ClientOrderID = resp.ClientOrderID
	}
	o.ApplyResponse(resp, time.Now())
	return o
}

// ApplyResponse 用交易所响应覆盖状态、成交量、均价与原文，缺失或无法解析的字段保留原值
func (o *Order) ApplyResponse(resp *exchange.OrderResponse, now time.Time) {
	if resp == nil {
		return
	}
	if resp.Status != "" {
		o.Status = OrderStatus(resp.Status)
	}
	if qty, err := decimal.NewFromString(resp.ExecutedQty); err == nil {
		o.ExecutedQty = qty
	}
	if avg, err := decimal.NewFromString(resp.AvgPrice); err == nil {
		o.AvgPrice = &avg
	}
	o.RawResponse = resp.Payload()
	o.UpdatedAt = now
}
