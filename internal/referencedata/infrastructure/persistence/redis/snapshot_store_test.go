package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/pkg/cache"
)

func newTestStore(t *testing.T) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(cache.NewFromClient(client), "test:exchange_info"), mr
}

func TestSnapshotStore_Missing(t *testing.T) {
	s, _ := newTestStore(t)

	info, ok := s.Load(context.Background())
	assert.False(t, ok)
	assert.Nil(t, info)
}

func TestSnapshotStore_Corrupt(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set("test:exchange_info", "not json"))

	_, ok := s.Load(context.Background())
	assert.False(t, ok)
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	s, mr := newTestStore(t)
	want := &exchange.ExchangeInfo{Symbols: []exchange.SymbolInfo{{Symbol: "ETHUSDT", Status: "TRADING"}}}

	require.NoError(t, s.Save(context.Background(), want))
	assert.True(t, mr.Exists("test:exchange_info"))
	assert.Zero(t, mr.TTL("test:exchange_info"))

	got, ok := s.Load(context.Background())
	require.True(t, ok)
	require.Len(t, got.Symbols, 1)
	assert.Equal(t, "ETHUSDT", got.Symbols[0].Symbol)
}
