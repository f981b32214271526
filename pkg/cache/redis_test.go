package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	rc, err := New(Config{Host: mr.Host(), Port: port, MaxPoolSize: 2, ReadTimeout: 1, WriteTimeout: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	ctx := context.Background()

	v, err := rc.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, rc.Set(ctx, "plain", "value", 0))
	v, err = rc.Get(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	require.NoError(t, rc.SetJSON(ctx, "json", map[string]int{"n": 1}, time.Minute))
	v, err = rc.Get(ctx, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, v)
	assert.Equal(t, time.Minute, mr.TTL("json"))
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	_, err = New(Config{Host: mr.Host(), Port: port})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
