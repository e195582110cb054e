package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDetection(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordDetection(true, 75, []string{"security", "payments"})
	m.RecordDetection(false, 10, nil)
	m.RecordDetection(true, 90, []string{"security"})

	if got := testutil.ToFloat64(m.Detections.WithLabelValues("true")); got != 2 {
		t.Errorf("large detections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Detections.WithLabelValues("false")); got != 1 {
		t.Errorf("small detections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RiskFlags.WithLabelValues("security")); got != 2 {
		t.Errorf("security flags = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.DetectionScore); got != 1 {
		t.Errorf("score histogram series = %d, want 1", got)
	}
}

func TestRecordBreakdown(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordBreakdown(false, true, 4, 20, time.Millisecond)
	m.RecordBreakdown(true, true, 2, 3, time.Millisecond)
	m.RecordBreakdown(false, false, 0, 0, time.Millisecond)

	if got := testutil.ToFloat64(m.Breakdowns.WithLabelValues("false", "true")); got != 1 {
		t.Errorf("unforced successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Breakdowns.WithLabelValues("true", "true")); got != 1 {
		t.Errorf("forced successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Breakdowns.WithLabelValues("false", "false")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
}

func TestRecordHTTPAndErrors(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHTTPRequest("POST", "/v1/plans/detect", 200, 5*time.Millisecond)
	m.RecordHTTPRequest("POST", "/v1/plans/detect", 400, time.Millisecond)
	m.RecordLookup("cache")
	m.RecordLookup("store")
	m.RecordLookup("cache")
	m.RecordCommand("breakdown", true, time.Second)
	m.RecordError("PLAN-003")
	m.RecordError("")

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/v1/plans/detect", "400")); got != 1 {
		t.Errorf("400 requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BreakdownCacheHits.WithLabelValues("cache")); got != 2 {
		t.Errorf("cache lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("breakdown", "true")); got != 1 {
		t.Errorf("command executions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("UNKNOWN")); got != 1 {
		t.Errorf("unknown errors = %v, want 1", got)
	}
}

func TestHandlerFor(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordDetection(true, 80, []string{"migration"})

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`ordinex_detections_total{large_plan="true"} 1`,
		`ordinex_risk_flags_total{category="migration"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
