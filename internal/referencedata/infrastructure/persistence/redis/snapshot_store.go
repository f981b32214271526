package redis

import (
	"context"
	"encoding/json"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/pkg/cache"
	"github.com/wyfcoding/futurestrading/pkg/logger"
)

// SnapshotStore 在 Redis 中保存交易规则快照，供多个进程共享，不设置过期时间
type SnapshotStore struct {
	cache *cache.RedisCache
	key   string
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore 创建基于 Redis 的快照仓储
func NewSnapshotStore(c *cache.RedisCache, key string) *SnapshotStore {
	if key == "" {
		key = "futures:exchange_info"
	}
	return &SnapshotStore{cache: c, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) (*exchange.ExchangeInfo, bool) {
	data, err := s.cache.Get(ctx, s.key)
	if err != nil {
		logger.Warn(ctx, "Failed to read exchange info snapshot from redis", "key", s.key, "error", err)
		return nil, false
	}
	if data == "" {
		logger.Info(ctx, "Exchange info snapshot not found in redis, will fetch from API", "key", s.key)
		return nil, false
	}

	var info exchange.ExchangeInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		logger.Warn(ctx, "Exchange info snapshot in redis is corrupt, ignoring", "key", s.key, "error", err)
		return nil, false
	}
	logger.Info(ctx, "Loaded exchange info from redis snapshot", "key", s.key, "symbols", len(info.Symbols))
	return &info, true
}

func (s *SnapshotStore) Save(ctx context.Context, info *exchange.ExchangeInfo) error {
	return s.cache.SetJSON(ctx, s.key, info, 0)
}
