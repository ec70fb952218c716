package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	t.Parallel()

	a := NewMetrics("")
	b := NewMetrics("")

	a.RecordImport("ok", 0.1, 10, 3, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ImportsTotal.WithLabelValues("ok")))
	assert.Equal(t, 10.0, testutil.ToFloat64(a.RowsParsed))
	assert.Equal(t, 3.0, testutil.ToFloat64(a.TradesReconstructed))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.TradesStored))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RowsParsed))
}

func TestRecorders(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RecordDiagnostic("stray_exit_ignored")
	m.RecordDiagnostic("stray_exit_ignored")
	m.RecordStoreOp("save", 0.01, nil)
	m.RecordStoreOp("save", 0.01, errors.New("boom"))
	m.SetStoredTrades(7)
	m.RecordHTTP("GET", "/v1/trades", "200", 0.001)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("stray_exit_ignored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("save")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.StoredTrades))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/v1/trades", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordImport("ok", 1, 1, 1, 1)
		m.RecordDiagnostic("x")
		m.RecordStoreOp("load", 1, nil)
		m.SetStoredTrades(1)
		m.RecordHTTP("GET", "/", "200", 1)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("")
	m.RecordImport("ok", 0.2, 4, 1, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tradejournal_import_runs_total{status="ok"} 1`)
	assert.Contains(t, string(body), "tradejournal_import_rows_parsed_total 4")
}
