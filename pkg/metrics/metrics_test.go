package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New("futures-bot")

	m.ObserveOrder("place_order", nil)
	m.ObserveOrder("place_order", errors.New("rejected"))
	m.ObserveRemoteCall("create_order", nil, 20*time.Millisecond)
	m.ObserveRefresh(nil)
	m.ObserveHTTP("GET", "/api/ping", "200", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("place_order", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("place_order", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetadataRefreshTotal.WithLabelValues("success")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "trading_futures_bot_http_requests_total")
	assert.Contains(t, string(body), "trading_futures_bot_orders_total")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOrder("place_order", nil)
		m.ObserveRemoteCall("ping", nil, time.Millisecond)
		m.ObserveRefresh(errors.New("down"))
		m.ObserveHTTP("GET", "/", "200", time.Millisecond)
	})
}
