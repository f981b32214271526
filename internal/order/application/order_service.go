// Package application 编排下单、查询与撤单流程：规则解析、校验、远程调用、落库与审计
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/metrics"
)

// RulesProvider 合约规则来源，由 referencedata 的 RulesCache 实现
type RulesProvider interface {
	GetRules(ctx context.Context, symbol string) (*refdomain.InstrumentRules, error)
	Refresh(ctx context.Context) error
	Symbols(ctx context.Context) ([]*refdomain.InstrumentRules, error)
}

// OrderService 三个前端共用的订单服务。
// 远程调用只尝试一次；远程失败先写失败审计再原样返回。
type OrderService struct {
	exchange   exchange.ExchangeClient
	rules      RulesProvider
	orders     domain.OrderRepository
	activities domain.ActivityRepository
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics

	// 为 nil 时下单参数不带 newClientOrderId
	newClientOrderID func() string
}

// Option 订单服务可选项
type Option func(*OrderService)

// WithClientOrderIDs 下单时附带随机生成的 newClientOrderId
func WithClientOrderIDs() Option {
	return func(s *OrderService) {
		s.newClientOrderID = uuid.NewString
	}
}

// NewOrderService 创建订单服务，publisher 为 nil 时不发布事件
func NewOrderService(
	client exchange.ExchangeClient,
	rules RulesProvider,
	orders domain.OrderRepository,
	activities domain.ActivityRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	opts ...Option,
) *OrderService {
	if publisher == nil {
		publisher = domain.NoopEventPublisher{}
	}
	s := &OrderService{
		exchange:   client,
		rules:      rules,
		orders:     orders,
		activities: activities,
		publisher:  publisher,
		metrics:    m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder 下单。规则解析或校验失败时不发起远程调用、不写任何记录。
func (s *OrderService) PlaceOrder(ctx context.Context, req domain.OrderRequest, iface domain.Interface) (*exchange.OrderResponse, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	defer logger.LogDuration(ctx, "OrderService.PlaceOrder", "symbol", req.Symbol)()

	rules, err := s.rules.GetRules(ctx, req.Symbol)
	if err != nil {
		s.metrics.ObserveOrder(string(domain.ActionPlaceOrder), err)
		return nil, err
	}

	params, err := domain.ValidateAndNormalize(req, rules)
	if err != nil {
		s.metrics.ObserveOrder(string(domain.ActionPlaceOrder), err)
		return nil, err
	}
	if s.newClientOrderID != nil {
		params.NewClientOrderID = s.newClientOrderID()
	}

	logger.Info(ctx, "Placing order", "symbol", params.Symbol, "params", params.Values().Encode())

	resp, err := s.exchange.CreateOrder(ctx, *params)
	s.metrics.ObserveOrder(string(domain.ActionPlaceOrder), err)
	if err != nil {
		s.activities.LogActivity(ctx, &domain.Activity{
			Action:       domain.ActionPlaceOrder,
			Symbol:       params.Symbol,
			Outcome:      domain.OutcomeError,
			Message:      "Failed to place order",
			ErrorDetails: err.Error(),
			Interface:    iface,
		})
		return nil, err
	}

	order := domain.NewOrder(*params, resp)
	if err := s.orders.Save(ctx, order); err != nil {
		logger.Error(ctx, "Failed to record placed order", "order_id", order.ExchangeOrderID, "error", err)
	}

	s.activities.LogActivity(ctx, &domain.Activity{
		Action:    domain.ActionPlaceOrder,
		Symbol:    params.Symbol,
		OrderID:   resp.ExchangeOrderID(),
		Outcome:   domain.OutcomeSuccess,
		Message:   fmt.Sprintf("Order placed: %s %s", params.Type, params.Side),
		Interface: iface,
	})
	s.publish(ctx, domain.NewOrderEvent(domain.EventOrderPlaced, order, iface))

	logger.Info(ctx, "Order placed", "symbol", params.Symbol, "order_id", order.ExchangeOrderID, "status", order.Status)
	return resp, nil
}

// GetOrderStatus 查询订单状态并同步本地记录
func (s *OrderService) GetOrderStatus(ctx context.Context, symbol, orderID string, iface domain.Interface) (*exchange.OrderResponse, error) {
	defer logger.LogDuration(ctx, "OrderService.GetOrderStatus", "symbol", symbol, "order_id", orderID)()

	symbol, orderID, err := normalizeOrderRef(symbol, orderID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Getting order status", "symbol", symbol, "order_id", orderID)

	resp, err := s.exchange.GetOrder(ctx, symbol, orderID)
	s.metrics.ObserveOrder(string(domain.ActionCheckStatus), err)
	if err != nil {
		s.activities.LogActivity(ctx, &domain.Activity{
			Action:       domain.ActionCheckStatus,
			Symbol:       symbol,
			OrderID:      orderID,
			Outcome:      domain.OutcomeError,
			Message:      "Failed to check status",
			ErrorDetails: err.Error(),
			Interface:    iface,
		})
		return nil, err
	}

	order := s.syncOrder(ctx, orderID, resp)
	s.activities.LogActivity(ctx, &domain.Activity{
		Action:    domain.ActionCheckStatus,
		Symbol:    symbol,
		OrderID:   orderID,
		Outcome:   domain.OutcomeSuccess,
		Message:   fmt.Sprintf("Status checked: %s", resp.Status),
		Interface: iface,
	})
	if order != nil {
		s.publish(ctx, domain.NewOrderEvent(domain.EventOrderStatus, order, iface))
	}
	return resp, nil
}

// CancelOrder 撤单并同步本地记录
func (s *OrderService) CancelOrder(ctx context.Context, symbol, orderID string, iface domain.Interface) (*exchange.OrderResponse, error) {
	defer logger.LogDuration(ctx, "OrderService.CancelOrder", "symbol", symbol, "order_id", orderID)()

	symbol, orderID, err := normalizeOrderRef(symbol, orderID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Cancelling order", "symbol", symbol, "order_id", orderID)

	resp, err := s.exchange.CancelOrder(ctx, symbol, orderID)
	s.metrics.ObserveOrder(string(domain.ActionCancelOrder), err)
	if err != nil {
		s.activities.LogActivity(ctx, &domain.Activity{
			Action:       domain.ActionCancelOrder,
			Symbol:       symbol,
			OrderID:      orderID,
			Outcome:      domain.OutcomeError,
			Message:      "Failed to cancel order",
			ErrorDetails: err.Error(),
			Interface:    iface,
		})
		return nil, err
	}

	order := s.syncOrder(ctx, orderID, resp)
	s.activities.LogActivity(ctx, &domain.Activity{
		Action:    domain.ActionCancelOrder,
		Symbol:    symbol,
		OrderID:   orderID,
		Outcome:   domain.OutcomeSuccess,
		Message:   "Order cancelled",
		Interface: iface,
	})
	if order != nil {
		s.publish(ctx, domain.NewOrderEvent(domain.EventOrderCancelled, order, iface))
	}
	return resp, nil
}

// SymbolRules 返回交易对规则
func (s *OrderService) SymbolRules(ctx context.Context, symbol string) (*refdomain.InstrumentRules, error) {
	return s.rules.GetRules(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}

// Symbols 返回所有可交易合约的规则
func (s *OrderService) Symbols(ctx context.Context) ([]*refdomain.InstrumentRules, error) {
	return s.rules.Symbols(ctx)
}

// Refresh 强制刷新合约规则
func (s *OrderService) Refresh(ctx context.Context) error {
	return s.rules.Refresh(ctx)
}

// Ping 检查交易所连通性
func (s *OrderService) Ping(ctx context.Context) error {
	return s.exchange.Ping(ctx)
}

// TickerPrice 查询最新价
func (s *OrderService) TickerPrice(ctx context.Context, symbol string) (*exchange.TickerPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, &domain.InvalidFieldError{Field: "symbol", Reason: "is required"}
	}
	return s.exchange.TickerPrice(ctx, symbol)
}

// History 查询本地订单历史
func (s *OrderService) History(ctx context.Context, q domain.HistoryQuery) ([]*domain.Order, error) {
	q.Symbol = strings.ToUpper(strings.TrimSpace(q.Symbol))
	return s.orders.History(ctx, q)
}

// Statistics 本地订单统计
func (s *OrderService) Statistics(ctx context.Context) (domain.Statistics, error) {
	return s.orders.Statistics(ctx)
}

// Activities 最近的审计日志
func (s *OrderService) Activities(ctx context.Context, limit int) ([]*domain.Activity, error) {
	return s.activities.ListActivities(ctx, limit)
}

// syncOrder 用远程响应更新本地记录。按 clientOrderId 查询时以响应中的交易所订单号定位。
// 本地写入失败只记录日志。
func (s *OrderService) syncOrder(ctx context.Context, orderID string, resp *exchange.OrderResponse) *domain.Order {
	key := resp.ExchangeOrderID()
	if key == "" {
		key = orderID
	}
	order, err := s.orders.UpdateFromResponse(ctx, key, resp)
	if err != nil {
		logger.Error(ctx, "Failed to update order record", "order_id", key, "error", err)
		return nil
	}
	if order == nil {
		logger.Info(ctx, "Order not tracked locally", "order_id", key)
	}
	return order
}

func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish order event", "type", event.Type, "order_id", event.ExchangeOrderID, "error", err)
	}
}

func normalizeOrderRef(symbol, orderID string) (string, string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	orderID = strings.TrimSpace(orderID)
	if symbol == "" {
		return "", "", &domain.InvalidFieldError{Field: "symbol", Reason: "is required"}
	}
	if orderID == "" {
		return "", "", &domain.InvalidFieldError{Field: "orderId", Reason: "is required"}
	}
	return symbol, orderID, nil
}
