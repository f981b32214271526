package domain

import (
	"context"
	"time"
)

// 订单生命周期事件类型
const (
	EventOrderPlaced    = "placed"
	EventOrderStatus    = "status"
	EventOrderCancelled = "cancelled"
)

// OrderEvent 订单生命周期事件
type OrderEvent struct {
	Type            string      `json:"type"`
	ExchangeOrderID string      `json:"exchange_order_id"`
	Symbol          string      `json:"symbol"`
	Side            string      `json:"side,omitempty"`
	OrderType       string      `json:"order_type,omitempty"`
	Status          OrderStatus `json:"status"`
	ExecutedQty     string      `json:"executed_qty"`
	Interface       Interface   `json:"interface"`
	OccurredOn      time.Time   `json:"occurred_on"`
}

// NewOrderEvent 由订单记录构造事件
func NewOrderEvent(eventType string, order *Order, iface Interface) OrderEvent {
	return OrderEvent{
		Type:            eventType,
		ExchangeOrderID: order.ExchangeOrderID,
		Symbol:          order.Symbol,
		Side:            order.Side,
		OrderType:       order.Type,
		Status:          order.Status,
		ExecutedQty:     order.ExecutedQty.String(),
		Interface:       iface,
		OccurredOn:      time.Now(),
	}
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishOrderEvent 发布订单事件
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// NoopEventPublisher 不发布任何事件
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
