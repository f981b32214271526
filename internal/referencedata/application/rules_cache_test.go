package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/referencedata/domain"
)

type fakeSource struct {
	info  *exchange.ExchangeInfo
	err   error
	calls int
}

func (f *fakeSource) ExchangeInfo(context.Context) (*exchange.ExchangeInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

type memoryStore struct {
	info    *exchange.ExchangeInfo
	saveErr error
	saves   int
}

func (m *memoryStore) Load(context.Context) (*exchange.ExchangeInfo, bool) {
	return m.info, m.info != nil
}

func (m *memoryStore) Save(_ context.Context, info *exchange.ExchangeInfo) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.info = info
	return nil
}

func symbolInfo(symbol, status string) exchange.SymbolInfo {
	return exchange.SymbolInfo{
		Symbol: symbol,
		Status: status,
		Filters: []exchange.SymbolFilter{
			{"filterType": "PRICE_FILTER", "tickSize": "0.01"},
			{"filterType": "LOT_SIZE", "stepSize": "0.001", "minQty": "0.001"},
		},
	}
}

func TestRulesCache_LoadsSnapshotWithoutNetwork(t *testing.T) {
	src := &fakeSource{err: errors.New("unreachable")}
	store := &memoryStore{info: &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{symbolInfo("BTCUSDT", "TRADING")}}}

	c := NewRulesCache(context.Background(), src, store, nil)
	rules, err := c.GetRules(context.Background(), "btcusdt")

	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", rules.Symbol)
	assert.Zero(t, src.calls)
}

func TestRulesCache_RefreshOnMiss(t *testing.T) {
	src := &fakeSource{info: &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{
		symbolInfo("BTCUSDT", "TRADING"),
		symbolInfo("ETHUSDT", "TRADING"),
	}}}
	store := &memoryStore{}
	c := NewRulesCache(context.Background(), src, store, nil)

	rules, err := c.GetRules(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", rules.Symbol)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, store.saves)
	assert.NotNil(t, store.info)

	_, err = c.GetRules(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second lookup is served from cache")
}

func TestRulesCache_UnknownSymbol(t *testing.T) {
	src := &fakeSource{info: &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{symbolInfo("BTCUSDT", "TRADING")}}}
	c := NewRulesCache(context.Background(), src, &memoryStore{}, nil)

	_, err := c.GetRules(context.Background(), "DOGEUSDT")
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
	assert.Equal(t, 1, src.calls)
}

func TestRulesCache_MetadataUnavailable(t *testing.T) {
	remoteErr := &exchange.RemoteError{Op: "exchange_info", Err: errors.New("connection refused")}
	src := &fakeSource{err: remoteErr}
	c := NewRulesCache(context.Background(), src, &memoryStore{}, nil)

	_, err := c.GetRules(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)

	var re *exchange.RemoteError
	assert.True(t, errors.As(err, &re))
}

func TestRulesCache_RefreshFailsWithCachedTable(t *testing.T) {
	src := &fakeSource{err: errors.New("unreachable")}
	store := &memoryStore{info: &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{symbolInfo("BTCUSDT", "TRADING")}}}
	c := NewRulesCache(context.Background(), src, store, nil)

	_, err := c.GetRules(context.Background(), "ETHUSDT")
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
	assert.NotErrorIs(t, err, domain.ErrMetadataUnavailable)

	_, err = c.GetRules(context.Background(), "BTCUSDT")
	assert.NoError(t, err)
}

func TestRulesCache_SnapshotSaveFailureIgnored(t *testing.T) {
	src := &fakeSource{info: &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{symbolInfo("BTCUSDT", "TRADING")}}}
	store := &memoryStore{saveErr: errors.New("disk full")}
	c := NewRulesCache(context.Background(), src, store, nil)

	rules, err := c.GetRules(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", rules.Symbol)
	assert.Equal(t, 1, store.saves)
}

func TestRulesCache_SymbolsListsTradingOnly(t *testing.T) {
	src := &fakeSource{info: &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{
		symbolInfo("ETHUSDT", "TRADING"),
		symbolInfo("BTCUSDT", "TRADING"),
		symbolInfo("LUNAUSDT", "SETTLING"),
	}}}
	c := NewRulesCache(context.Background(), src, &memoryStore{}, nil)

	symbols, err := c.Symbols(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, "BTCUSDT", symbols[0].Symbol)
	assert.Equal(t, "ETHUSDT", symbols[1].Symbol)
	assert.Equal(t, 3, c.Len())
}
