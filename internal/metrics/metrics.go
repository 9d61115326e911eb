// Package metrics exposes the process's Prometheus collectors.
//
// A Recorder owns its registry so tests can build isolated instances. All
// methods are safe on a nil *Recorder and do nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nbcertsync"

type Recorder struct {
	Registry *prometheus.Registry

	syncTotal    *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	pushAttempts *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New builds a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Certificate sync runs by terminal stage and result.",
		}, []string{"stage", "result"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of certificate sync runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		pushAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_attempts_total",
			Help:      "Load balancer API update attempts by HTTP status code (\"error\" for transport failures).",
		}, []string{"code"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Webhook HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Webhook HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	r.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.syncTotal, r.syncDuration, r.pushAttempts, r.httpRequests, r.httpDuration,
	)
	return r
}

// ObserveSync records one finished sync run. result is "success", "skipped" or "failure".
func (r *Recorder) ObserveSync(stage, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.syncTotal.WithLabelValues(stage, result).Inc()
	r.syncDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObservePushAttempt records one provider API call. code 0 means no response.
func (r *Recorder) ObservePushAttempt(code int) {
	if r == nil {
		return
	}
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	r.pushAttempts.WithLabelValues(label).Inc()
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(route string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}
