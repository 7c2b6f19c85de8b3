package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler"
)

var _ scheduler.Observer = (*Metrics)(nil)

func TestMetrics_ObserveSolve(t *testing.T) {
	m := New()

	m.ObserveSolve("success", 120*time.Millisecond, model.Statistics{
		Occurrences: 40, ForbiddenPairs: 900, Nodes: 40, Backtracks: 2,
	})
	m.ObserveSolve("success", 80*time.Millisecond, model.Statistics{Occurrences: 10, Nodes: 10})
	m.ObserveSolve("UNSATISFIABLE_MODEL", time.Second, model.Statistics{Occurrences: 3})
	m.ObserveSolve("CONFIG_ERROR", time.Millisecond, model.Statistics{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solveTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solveTotal.WithLabelValues("UNSATISFIABLE_MODEL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solveTotal.WithLabelValues("CONFIG_ERROR")))

	// 节点直方图只记录完成搜索的求解
	assert.Equal(t, 1, testutil.CollectAndCount(m.searchNodes))
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "kebiao_search_nodes" {
			assert.Equal(t, uint64(2), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
		if f.GetName() == "kebiao_occurrences" {
			assert.Equal(t, uint64(3), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/timetable/generate", http.StatusOK, 30*time.Millisecond)
	m.ObserveSolve("success", time.Second, model.Statistics{Occurrences: 5, Nodes: 5})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `kebiao_http_requests_total{method="POST",path="/api/v1/timetable/generate",status="200"} 1`)
	assert.Contains(t, string(body), `kebiao_solve_total{outcome="success"} 1`)
	assert.Contains(t, string(body), "kebiao_goroutines")
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSolve("success", time.Second, model.Statistics{})
		m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
