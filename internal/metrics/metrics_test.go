package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.ObserveSync("done", "success", 10*time.Millisecond)
	r.ObserveSync("push", "failure", time.Second)
	r.ObserveSync("push", "failure", time.Second)
	r.ObservePushAttempt(500)
	r.ObservePushAttempt(0)
	r.ObserveHTTP("trigger", 200, time.Millisecond)

	if got := testutil.ToFloat64(r.syncTotal.WithLabelValues("push", "failure")); got != 2 {
		t.Errorf("sync_total{push,failure} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.pushAttempts.WithLabelValues("error")); got != 1 {
		t.Errorf("push_attempts_total{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.httpRequests.WithLabelValues("trigger", "200")); got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "nbcertsync_sync_total") {
		t.Errorf("exposition missing nbcertsync_sync_total")
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveSync("done", "success", time.Second)
	r.ObservePushAttempt(200)
	r.ObserveHTTP("health", 200, time.Second)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unexpected status %d", rec.Code)
	}
}
