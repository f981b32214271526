package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	"github.com/wyfcoding/futurestrading/pkg/db"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/utils"
	"gorm.io/gorm"
)

// orderRepositoryImpl domain.OrderRepository 的 GORM 实现
type orderRepositoryImpl struct {
	db *db.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(d *db.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: d}
}

// Save 实现 domain.OrderRepository.Save
func (r *orderRepositoryImpl) Save(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	model := toOrderModel(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		logger.Error(ctx, "order_repository.save failed", "exchange_order_id", order.ExchangeOrderID, "error", err)
		return fmt.Errorf("failed to save order: %w", err)
	}

	order.ID = model.ID
	return nil
}

// UpdateFromResponse 实现 domain.OrderRepository.UpdateFromResponse
func (r *orderRepositoryImpl) UpdateFromResponse(ctx context.Context, exchangeOrderID string, resp *exchange.OrderResponse) (*domain.Order, error) {
	var updated *domain.Order
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		var model OrderModel
		if err := tx.Where("exchange_order_id = ?", exchangeOrderID).Order("id desc").First(&model).Error; err != nil {
			return err
		}

		order := toOrder(&model)
		order.ApplyResponse(resp, time.Now())

		next := toOrderModel(order)
		if err := tx.Model(&OrderModel{}).Where("id = ?", model.ID).Updates(map[string]any{
			"status":        next.Status,
			"executed_qty":  next.ExecutedQty,
			"avg_price":     next.AvgPrice,
			"response_data": next.ResponseData,
			"updated_at":    next.UpdatedAt,
		}).Error; err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn(ctx, "order not found for update", "exchange_order_id", exchangeOrderID)
			return nil, nil
		}
		logger.Error(ctx, "order_repository.update failed", "exchange_order_id", exchangeOrderID, "error", err)
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return updated, nil
}

// GetByExchangeID 实现 domain.OrderRepository.GetByExchangeID
func (r *orderRepositoryImpl) GetByExchangeID(ctx context.Context, exchangeOrderID string) (*domain.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("exchange_order_id = ?", exchangeOrderID).Order("id desc").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toOrder(&model), nil
}

// History 实现 domain.OrderRepository.History
func (r *orderRepositoryImpl) History(ctx context.Context, q domain.HistoryQuery) ([]*domain.Order, error) {
	tx := r.db.WithContext(ctx).Model(&OrderModel{})
	if q.Symbol != "" {
		tx = tx.Where("symbol = ?", q.Symbol)
	}
	if q.OrderID != "" {
		tx = tx.Where("exchange_order_id = ?", q.OrderID)
	}
	if !q.From.IsZero() {
		tx = tx.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("created_at <= ?", q.To)
	}

	var models []OrderModel
	limit := utils.ClampLimit(q.Limit, domain.DefaultHistoryLimit, domain.MaxHistoryLimit)
	if err := tx.Order("created_at desc, id desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toOrder(&models[i])
	}
	return orders, nil
}

// Statistics 实现 domain.OrderRepository.Statistics
func (r *orderRepositoryImpl) Statistics(ctx context.Context) (domain.Statistics, error) {
	var total, filled, cancelled, pending int64
	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&OrderModel{}) }

	if err := base().Count(&total).Error; err != nil {
		return domain.Statistics{}, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := base().Where("status = ?", string(domain.OrderStatusFilled)).Count(&filled).Error; err != nil {
		return domain.Statistics{}, fmt.Errorf("failed to count filled orders: %w", err)
	}
	if err := base().Where("status = ?", string(domain.OrderStatusCanceled)).Count(&cancelled).Error; err != nil {
		return domain.Statistics{}, fmt.Errorf("failed to count cancelled orders: %w", err)
	}
	open := []string{string(domain.OrderStatusNew), string(domain.OrderStatusPartiallyFilled)}
	if err := base().Where("status IN ?", open).Count(&pending).Error; err != nil {
		return domain.Statistics{}, fmt.Errorf("failed to count pending orders: %w", err)
	}

	return domain.NewStatistics(total, filled, cancelled, pending), nil
}
