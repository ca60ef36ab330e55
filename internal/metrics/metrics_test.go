package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.NoteOp("create", nil)
	m.NoteOp("create", nil)
	m.NoteOp("delete", errors.New("boom"))
	m.AIRequest(OutcomeOK, 2*time.Second)
	m.AIRequest("empty", 0)

	require.Equal(t, float64(2), testutil.ToFloat64(m.NoteOps.WithLabelValues("create", OutcomeOK)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.NoteOps.WithLabelValues("delete", OutcomeError)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.AIRequests.WithLabelValues("empty")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.NoteOp("update", nil)
		m.AIRequest(OutcomeError, time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.NoteOp("update", nil)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `notes_operations_total{op="update",outcome="ok"} 1`))
}
