// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paiban/kebiao/pkg/model"
)

const namespace = "kebiao"

// Metrics 排课服务指标，实现 scheduler.Observer
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	solveTotal      *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	searchNodes     prometheus.Histogram
	backtracks      prometheus.Histogram
	occurrences     prometheus.Histogram
	forbiddenPairs  prometheus.Histogram
}

// New 创建独立注册表并注册全部指标
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求延迟",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "path"}),
		solveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solve_total",
			Help:      "排课求解次数（按结果）",
		}, []string{"outcome"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "排课求解耗时",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}, []string{"outcome"}),
		searchNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_nodes",
			Help:      "单次求解的搜索节点数",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 10),
		}),
		backtracks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_backtracks",
			Help:      "单次求解的回溯次数",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		occurrences: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "occurrences",
			Help:      "单次求解的上课变量数（含空闲时段）",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}),
		forbiddenPairs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forbidden_value_pairs",
			Help:      "约束模型中互斥的取值对数量",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "goroutines",
		Help:      "当前 goroutine 数",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestTotal, m.requestDuration,
		m.solveTotal, m.solveDuration,
		m.searchNodes, m.backtracks, m.occurrences, m.forbiddenPairs,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler 返回Prometheus格式的指标HTTP处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry 返回底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSolve 记录一次求解
//
// 搜索统计只在成功时有意义，失败的求解只计数和计时。
func (m *Metrics) ObserveSolve(outcome string, duration time.Duration, stats model.Statistics) {
	if m == nil {
		return
	}
	m.solveTotal.WithLabelValues(outcome).Inc()
	m.solveDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if stats.Occurrences > 0 {
		m.occurrences.Observe(float64(stats.Occurrences))
		m.forbiddenPairs.Observe(float64(stats.ForbiddenPairs))
	}
	if stats.Nodes > 0 {
		m.searchNodes.Observe(float64(stats.Nodes))
		m.backtracks.Observe(float64(stats.Backtracks))
	}
}

// ObserveHTTPRequest 记录请求指标
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
