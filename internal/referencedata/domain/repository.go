package domain

import (
	"context"
	"errors"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
)

var (
	// ErrUnknownSymbol 刷新后仍找不到该合约
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrMetadataUnavailable 交易所不可达且本地没有任何规则
	ErrMetadataUnavailable = errors.New("exchange metadata unavailable")
)

// SnapshotStore 交易规则快照仓储，整表覆盖写入。
// Load 读取失败（不存在或已损坏）时返回 false，不返回错误。
type SnapshotStore interface {
	Load(ctx context.Context) (*exchange.ExchangeInfo, bool)
	Save(ctx context.Context, info *exchange.ExchangeInfo) error
}

// ExchangeInfoSource 提供全量交易规则的远程来源
type ExchangeInfoSource interface {
	ExchangeInfo(ctx context.Context) (*exchange.ExchangeInfo, error)
}
