package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/metrics"
)

// RulesCache 合约交易规则缓存。
// 启动时从快照加载，未命中时整表刷新，刷新结果同时写回快照。规则不会因时间过期。
type RulesCache struct {
	source  domain.ExchangeInfoSource
	store   domain.SnapshotStore
	metrics *metrics.Metrics

	mu    sync.RWMutex
	rules map[string]*domain.InstrumentRules
}

// NewRulesCache 创建缓存并尝试加载快照，快照不可用时缓存为空
func NewRulesCache(ctx context.Context, source domain.ExchangeInfoSource, store domain.SnapshotStore, m *metrics.Metrics) *RulesCache {
	c := &RulesCache{
		source:  source,
		store:   store,
		metrics: m,
		rules:   map[string]*domain.InstrumentRules{},
	}
	if info, ok := store.Load(ctx); ok {
		c.replace(info)
	}
	return c
}

// GetRules 获取合约规则。
// 用例流程：
// 1. 命中缓存直接返回
// 2. 未命中则从交易所整表刷新
// 3. 刷新后仍不存在返回 ErrUnknownSymbol；交易所不可达且缓存为空返回 ErrMetadataUnavailable
func (c *RulesCache) GetRules(ctx context.Context, symbol string) (*domain.InstrumentRules, error) {
	symbol = normalizeSymbol(symbol)
	if rules, ok := c.lookup(symbol); ok {
		return rules, nil
	}

	refreshErr := c.Refresh(ctx)
	if refreshErr != nil && c.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, refreshErr)
	}
	if rules, ok := c.lookup(symbol); ok {
		return rules, nil
	}
	if refreshErr != nil {
		logger.Warn(ctx, "Symbol missing and refresh failed, serving cached rules only", "symbol", symbol, "error", refreshErr)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
}

// Refresh 从交易所拉取全部合约规则，覆盖内存表与快照。快照写入失败只记录日志。
func (c *RulesCache) Refresh(ctx context.Context) error {
	logger.Info(ctx, "Fetching exchange info from API")
	info, err := c.source.ExchangeInfo(ctx)
	c.metrics.ObserveRefresh(err)
	if err != nil {
		return err
	}

	c.replace(info)
	if err := c.store.Save(ctx, info); err != nil {
		logger.Warn(ctx, "Failed to save exchange info snapshot", "error", err)
	}
	logger.Info(ctx, "Exchange info refreshed", "symbols", len(info.Symbols))
	return nil
}

// Symbols 返回可交易合约的规则，按代码排序。缓存为空时先刷新。
func (c *RulesCache) Symbols(ctx context.Context) ([]*domain.InstrumentRules, error) {
	if c.Len() == 0 {
		if err := c.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, err)
		}
	}

	c.mu.RLock()
	out := make([]*domain.InstrumentRules, 0, len(c.rules))
	for _, r := range c.rules {
		if r.IsTrading() {
			cp := *r
			out = append(out, &cp)
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Len 缓存中的合约数量
func (c *RulesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}

func (c *RulesCache) lookup(symbol string) (*domain.InstrumentRules, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rules[symbol]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (c *RulesCache) replace(info *exchange.ExchangeInfo) {
	table := make(map[string]*domain.InstrumentRules, len(info.Symbols))
	for _, s := range info.Symbols {
		table[s.Symbol] = domain.NewInstrumentRules(s)
	}

	c.mu.Lock()
	c.rules = table
	c.mu.Unlock()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
