package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
)

func TestSnapshotStore_MissingFile(t *testing.T) {
	s := NewSnapshotStore(filepath.Join(t.TempDir(), "exchange_info.json"))

	info, ok := s.Load(context.Background())
	assert.False(t, ok)
	assert.Nil(t, info)
}

func TestSnapshotStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exchange_info.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"symbols": [`), 0o644))

	info, ok := NewSnapshotStore(path).Load(context.Background())
	assert.False(t, ok)
	assert.Nil(t, info)
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "exchange_info.json")
	s := NewSnapshotStore(path)

	want := &exchange.ExchangeInfo{
		Timezone: "UTC",
		Symbols: []exchange.SymbolInfo{{
			Symbol: "BTCUSDT",
			Status: "TRADING",
			Filters: []exchange.SymbolFilter{
				{"filterType": "PRICE_FILTER", "tickSize": "0.10"},
			},
		}},
	}
	require.NoError(t, s.Save(context.Background(), want))

	got, ok := s.Load(context.Background())
	require.True(t, ok)
	require.Len(t, got.Symbols, 1)
	filter, found := got.Symbols[0].Filter(exchange.FilterPrice)
	require.True(t, found)
	assert.Equal(t, "0.10", filter.String("tickSize"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}
