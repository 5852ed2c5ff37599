package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brettbedarf/treefs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOp_Outcomes(t *testing.T) {
	t.Parallel()
	m := New()

	m.ObserveOp("insert", 0.01, nil)
	m.ObserveOp("insert", 0.01, treefs.NewError(treefs.KindConstraint, "insert", "dup"))
	m.ObserveOp("insert", 0.01, errors.New("plain"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("insert", "constraint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("insert", "unknown")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OpDuration))
}

func TestSetNodeCount(t *testing.T) {
	t.Parallel()
	m := New()

	m.SetNodeCount(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.TreeNodes))
}

func TestNew_Independent(t *testing.T) {
	t.Parallel()
	a, b := New(), New()

	a.SetNodeCount(3)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TreeNodes))
}

func TestHandler(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveHTTP("GET", "/filesystem/get", "200", 0.002)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `treefs_http_requests_total{method="GET",path="/filesystem/get",status="200"} 1`)
}
