// Package http 提供订单 Web API
package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/order/application"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/response"
)

const (
	defaultListLimit = 50
	maxSymbolList    = 50
)

// OrderHandler HTTP 处理器
type OrderHandler struct {
	svc *application.OrderService
}

// NewOrderHandler 创建 HTTP 处理器实例
func NewOrderHandler(svc *application.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.GET("/ping", h.Ping)
		api.GET("/symbols", h.ListSymbols)
		api.GET("/symbol/:symbol", h.GetSymbol)
		api.POST("/order", h.PlaceOrder)
		api.GET("/order/:symbol/:orderId", h.GetOrder)
		api.DELETE("/order/:symbol/:orderId", h.CancelOrder)
		api.GET("/price/:symbol", h.GetPrice)
		api.GET("/history", h.History)
		api.GET("/statistics", h.Statistics)
		api.GET("/logs", h.Logs)
	}
}

// Ping 测试交易所连通性
func (h *OrderHandler) Ping(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		logger.Error(c.Request.Context(), "Ping failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"message": "Connected to Binance Futures API"})
}

// ListSymbols 返回可交易合约列表
func (h *OrderHandler) ListSymbols(c *gin.Context) {
	rules, err := h.svc.Symbols(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get symbols", "error", err)
		response.ErrorWithStatus(c, statusFor(err, http.StatusInternalServerError), err.Error(), "")
		return
	}
	symbols := make([]string, 0, len(rules))
	for _, r := range rules {
		if len(symbols) == maxSymbolList {
			break
		}
		symbols = append(symbols, r.Symbol)
	}
	response.Success(c, gin.H{"symbols": symbols})
}

// GetSymbol 返回单个合约的交易规则
func (h *OrderHandler) GetSymbol(c *gin.Context) {
	rules, err := h.svc.SymbolRules(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get symbol info", "symbol", c.Param("symbol"), "error", err)
		status := statusFor(err, http.StatusInternalServerError)
		if errors.Is(err, refdomain.ErrUnknownSymbol) {
			status = http.StatusNotFound
		}
		response.ErrorWithStatus(c, status, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"info": application.ToSymbolRulesDTO(rules)})
}

// PlaceOrder 下单
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var body application.PlaceOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	in := body.Input()
	req, err := in.ToRequest()
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	resp, err := h.svc.PlaceOrder(c.Request.Context(), req, domain.InterfaceWeb)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to place order", "symbol", in.Symbol, "error", err)
		fail(c, err, statusFor(err, http.StatusBadRequest), friendlyPlaceError(err))
		return
	}
	response.Success(c, gin.H{"order": resp.Payload()})
}

// GetOrder 查询订单状态
func (h *OrderHandler) GetOrder(c *gin.Context) {
	symbol, orderID := c.Param("symbol"), c.Param("orderId")
	resp, err := h.svc.GetOrderStatus(c.Request.Context(), symbol, orderID, domain.InterfaceWeb)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get order status", "symbol", symbol, "order_id", orderID, "error", err)
		msg := err.Error()
		if isUnknownOrder(err) {
			msg = "Order not found. Please check the Order ID and symbol."
		}
		fail(c, err, statusFor(err, http.StatusBadRequest), msg)
		return
	}
	response.Success(c, gin.H{"order": resp.Payload()})
}

// CancelOrder 撤单
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	symbol, orderID := c.Param("symbol"), c.Param("orderId")
	resp, err := h.svc.CancelOrder(c.Request.Context(), symbol, orderID, domain.InterfaceWeb)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to cancel order", "symbol", symbol, "order_id", orderID, "error", err)
		msg := err.Error()
		switch {
		case isUnknownOrder(err):
			msg = "Order not found. It may have already been filled, cancelled, or the Order ID is incorrect."
		case strings.Contains(msg, "Invalid symbol"):
			msg = "Invalid trading symbol."
		}
		fail(c, err, statusFor(err, http.StatusBadRequest), msg)
		return
	}
	response.Success(c, gin.H{"order": resp.Payload()})
}

// GetPrice 查询最新价
func (h *OrderHandler) GetPrice(c *gin.Context) {
	price, err := h.svc.TickerPrice(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get price", "symbol", c.Param("symbol"), "error", err)
		response.ErrorWithStatus(c, statusFor(err, http.StatusBadRequest), err.Error(), "")
		return
	}
	dto := application.ToPriceDTO(price)
	response.Success(c, gin.H{"symbol": dto.Symbol, "price": dto.Price, "time": dto.Time})
}

// History 查询本地订单历史，支持 symbol、orderId、from、to（毫秒时间戳）与 limit
func (h *OrderHandler) History(c *gin.Context) {
	q := domain.HistoryQuery{
		Symbol:  c.Query("symbol"),
		OrderID: c.Query("orderId"),
		Limit:   queryInt(c, "limit", defaultListLimit),
	}
	if ms := queryInt(c, "from", 0); ms > 0 {
		q.From = time.UnixMilli(int64(ms))
	}
	if ms := queryInt(c, "to", 0); ms > 0 {
		q.To = time.UnixMilli(int64(ms))
	}

	orders, err := h.svc.History(c.Request.Context(), q)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get history", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"history": application.ToOrderDTOs(orders)})
}

// Statistics 订单统计
func (h *OrderHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get statistics", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"statistics": stats})
}

// Logs 最近的审计日志
func (h *OrderHandler) Logs(c *gin.Context) {
	entries, err := h.svc.Activities(c.Request.Context(), queryInt(c, "limit", defaultListLimit))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get logs", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"logs": application.ToActivityDTOs(entries)})
}

// fail 友好提示与原始错误不同时，把原始错误放入 detail
func fail(c *gin.Context, err error, status int, msg string) {
	detail := ""
	if msg != err.Error() {
		detail = err.Error()
	}
	response.ErrorWithStatus(c, status, msg, detail)
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// statusFor 本地错误映射为 4xx/503，其余使用 fallback
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, refdomain.ErrUnknownSymbol):
		return http.StatusBadRequest
	case errors.Is(err, refdomain.ErrMetadataUnavailable):
		return http.StatusServiceUnavailable
	}
	var remote *exchange.RemoteError
	if errors.As(err, &remote) && remote.StatusCode >= 500 {
		return http.StatusBadGateway
	}
	return fallback
}

func remoteCode(err error) int {
	var remote *exchange.RemoteError
	if errors.As(err, &remote) {
		return remote.Code
	}
	return 0
}

func isUnknownOrder(err error) bool {
	return remoteCode(err) == -2011 || strings.Contains(err.Error(), "Unknown order")
}

// friendlyPlaceError 常见下单错误码转换为可读提示
func friendlyPlaceError(err error) string {
	msg := err.Error()
	code := remoteCode(err)
	switch {
	case code == -2019 || strings.Contains(msg, "Margin is insufficient"):
		return "Insufficient margin. Please add more testnet funds to your account."
	case code == -4164 || strings.Contains(msg, "notional must be no smaller"):
		return "Order value too small. Minimum order value is $100. Increase quantity or price."
	case code == -2021 || strings.Contains(msg, "would immediately trigger"):
		return "Stop price would trigger immediately. Adjust stop price based on current market price."
	case code == -1111 || strings.Contains(msg, "Precision is over the maximum"):
		return "Price or quantity has too many decimal places. Check symbol info for correct precision."
	}
	return msg
}
