package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "homebooking"

// Recorder exposes the service counters. A nil *Recorder is a valid no-op.
type Recorder struct {
	transitions     *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// NewRecorder creates and registers collectors on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order transition attempts by event and result.",
		}, []string{"event", "result"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reconciliations_total",
			Help:      "Payment reconciliation calls by channel and outcome.",
		}, []string{"channel", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partner_notifications_total",
			Help:      "Partner notifications by delivery result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{r.transitions, r.reconciliations, r.notifications, r.httpRequests, r.httpLatency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Transition counts a coordinator attempt.
func (r *Recorder) Transition(event, result string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(normalizeLabel(event), normalizeLabel(result)).Inc()
}

// Reconciliation counts a reconcile call.
func (r *Recorder) Reconciliation(channel, outcome string) {
	if r == nil {
		return
	}
	r.reconciliations.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

// Notification counts one partner notification delivery attempt.
func (r *Recorder) Notification(delivered bool) {
	if r == nil {
		return
	}
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	r.notifications.WithLabelValues(result).Inc()
}

// HTTPRequest records one served request.
func (r *Recorder) HTTPRequest(method, route string, status int, latency time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return strings.ToLower(v)
}

// Module provides a dedicated registry, the recorder bound to it and the
// gatherer served on /metrics.
var Module = fx.Provide(
	prometheus.NewRegistry,
	func(reg *prometheus.Registry) (*Recorder, error) { return NewRecorder(reg) },
	func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
)
