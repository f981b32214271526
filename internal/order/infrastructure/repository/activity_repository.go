package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/futurestrading/internal/order/domain"
	"github.com/wyfcoding/futurestrading/pkg/db"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/utils"
)

// activityRepositoryImpl domain.ActivityRepository 的 GORM 实现
type activityRepositoryImpl struct {
	db *db.DB
}

// NewActivityRepository 创建审计日志仓储实例
func NewActivityRepository(d *db.DB) domain.ActivityRepository {
	return &activityRepositoryImpl{db: d}
}

// LogActivity 追加一条审计日志，写入失败只记录错误日志
func (r *activityRepositoryImpl) LogActivity(ctx context.Context, entry *domain.Activity) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	model := toActivityModel(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		logger.Error(ctx, "failed to log activity", "action", entry.Action, "order_id", entry.OrderID, "error", err)
		return
	}
	entry.ID = model.ID
}

// ListActivities 按时间倒序返回最近的审计日志
func (r *activityRepositoryImpl) ListActivities(ctx context.Context, limit int) ([]*domain.Activity, error) {
	var models []ActivityModel
	limit = utils.ClampLimit(limit, domain.DefaultHistoryLimit, domain.MaxHistoryLimit)
	if err := r.db.WithContext(ctx).Order("timestamp desc, id desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	entries := make([]*domain.Activity, len(models))
	for i := range models {
		entries[i] = toActivity(&models[i])
	}
	return entries, nil
}
