package domain

import (
	"context"
	"time"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
)

const (
	// DefaultHistoryLimit 历史查询默认条数
	DefaultHistoryLimit = 100
	// MaxHistoryLimit 历史查询最大条数
	MaxHistoryLimit = 1000
)

// HistoryQuery 历史订单查询条件，零值字段不参与过滤
type HistoryQuery struct {
	Symbol  string
	OrderID string
	From    time.Time
	To      time.Time
	Limit   int
}

// Statistics 订单统计
type Statistics struct {
	TotalOrders     int64   `json:"total_orders"`
	FilledOrders    int64   `json:"filled_orders"`
	CancelledOrders int64   `json:"cancelled_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	SuccessRate     float64 `json:"success_rate"`
}

// NewStatistics 由计数计算成功率，总数为 0 时成功率为 0
func NewStatistics(total, filled, cancelled, pending int64) Statistics {
	s := Statistics{
		TotalOrders:     total,
		FilledOrders:    filled,
		CancelledOrders: cancelled,
		PendingOrders:   pending,
	}
	if total > 0 {
		s.SuccessRate = float64(filled) / float64(total) * 100
	}
	return s
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Save 插入一条订单记录并回填 ID
	Save(ctx context.Context, order *Order) error
	// UpdateFromResponse 更新该交易所订单号下最新的一条记录，不存在时返回 (nil, nil)
	UpdateFromResponse(ctx context.Context, exchangeOrderID string, resp *exchange.OrderResponse) (*Order, error)
	// GetByExchangeID 按交易所订单号获取最新记录，不存在时返回 (nil, nil)
	GetByExchangeID(ctx context.Context, exchangeOrderID string) (*Order, error)
	// History 按创建时间倒序返回订单
	History(ctx context.Context, q HistoryQuery) ([]*Order, error)
	// Statistics 全表统计
	Statistics(ctx context.Context) (Statistics, error)
}

// ActivityRepository 审计日志仓储接口。LogActivity 不返回错误，写入失败只记录日志。
type ActivityRepository interface {
	LogActivity(ctx context.Context, entry *Activity)
	ListActivities(ctx context.Context, limit int) ([]*Activity, error)
}
