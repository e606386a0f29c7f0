package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"veridian-hq/covenant/pkg/config"
)

func newTestMetrics() (*LoaderMetrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	cfg := &config.MetricsConfig{Namespace: "covenant", Subsystem: "loader"}
	return NewLoaderMetrics(cfg, registry), registry
}

func TestRecordLoad(t *testing.T) {
	m, _ := newTestMetrics()

	m.RecordLoad("validators.dsl", "ok", 10*time.Millisecond)
	m.RecordLoad("validators.dsl", "ok", 20*time.Millisecond)
	m.RecordLoad("broken.dsl", "error", time.Millisecond)

	if got := testutil.ToFloat64(m.loadsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("loads ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.loadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("loads error = %v, want 1", got)
	}
}

func TestRecordVerdictAndTarget(t *testing.T) {
	m, _ := newTestMetrics()

	m.RecordVerdict("tested-pass")
	m.RecordVerdict("tested-pass")
	m.RecordVerdict("untested")
	m.RecordTarget(true)
	m.RecordTarget(false)

	if got := testutil.ToFloat64(m.verdictsTotal.WithLabelValues("tested-pass")); got != 2 {
		t.Errorf("tested-pass verdicts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.targetsTotal.WithLabelValues("fail")); got != 1 {
		t.Errorf("failed targets = %v, want 1", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m, registry := newTestMetrics()
	m.RecordVerdict("force-exposed")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler(registry).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "covenant_loader_symbol_verdicts_total") {
		t.Errorf("exposition output missing verdict metric:\n%s", body)
	}
}
