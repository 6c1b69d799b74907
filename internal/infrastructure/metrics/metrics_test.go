package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/apperror"
)

func TestMetrics_Operations(t *testing.T) {
	m := New()

	m.ObserveOperation("outbound", nil)
	m.ObserveOperation("outbound", nil)
	m.ObserveOperation("outbound", apperror.NewInsufficientStock("m1", "A", 5, 1))
	m.ObserveOperation("transfer", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("outbound", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("outbound", apperror.CodeInsufficientStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("transfer", apperror.CodeInternal)))
}

func TestMetrics_Writes(t *testing.T) {
	m := New()

	m.ObserveWrite("materials", nil, 5*time.Millisecond)
	m.ObserveWrite("materials", errors.New("down"), time.Second)
	m.ObserveCoalesced("materials")
	m.ObserveVerification(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues("materials", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues("materials", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coalesced.WithLabelValues("materials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifyRuns.WithLabelValues("mismatch")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveOperation("inbound", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `maintledger_ledger_operations_total{operation="inbound",outcome="ok"} 1`)
}

func TestWatchPool(t *testing.T) {
	m := New()
	m.WatchPool(func() (int32, int32, int32) { return 3, 2, 5 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "maintledger_db_pool_acquired_conns 3")
	assert.Contains(t, body, "maintledger_db_pool_total_conns 5")
}
