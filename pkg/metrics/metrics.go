// Package metrics 提供订单流程的 Prometheus 指标
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合，nil 接收者上的方法均为空操作
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 交易所调用计数
	RemoteCallsTotal *prometheus.CounterVec
	// 交易所调用耗时
	RemoteCallDuration *prometheus.HistogramVec

	// 下单结果计数
	OrdersTotal *prometheus.CounterVec
	// 合约规则刷新计数
	MetadataRefreshTotal *prometheus.CounterVec
}

// New 创建指标实例，使用独立的 registry
func New(serviceName string) *Metrics {
	subsystem := strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RemoteCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: subsystem,
			Name:      "exchange_calls_total",
			Help:      "Total exchange API calls",
		}, []string{"op", "result"}),
		RemoteCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: subsystem,
			Name:      "exchange_call_duration_seconds",
			Help:      "Exchange API call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: subsystem,
			Name:      "orders_total",
			Help:      "Total order actions by outcome",
		}, []string{"action", "result"}),
		MetadataRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: subsystem,
			Name:      "metadata_refresh_total",
			Help:      "Total exchange metadata refreshes",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RemoteCallsTotal,
		m.RemoteCallDuration,
		m.OrdersTotal,
		m.MetadataRefreshTotal,
	)
	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveRemoteCall 记录一次交易所调用
func (m *Metrics) ObserveRemoteCall(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCallsTotal.WithLabelValues(op, result(err)).Inc()
	m.RemoteCallDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveOrder 记录一次订单动作
func (m *Metrics) ObserveOrder(action string, err error) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(action, result(err)).Inc()
}

// ObserveRefresh 记录一次规则刷新
func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	m.MetadataRefreshTotal.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
