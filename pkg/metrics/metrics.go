package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vrdlab"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	RecordOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "record_operations_total", Help: "Record operations by collection, operation and outcome."},
		[]string{"kind", "op", "outcome"},
	)
	AttachmentRemovals = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "attachment_removals_total", Help: "Best-effort attachment removals by collection and result."},
		[]string{"kind", "result"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "Request latency by route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RecordOperations)
	reg.MustRegister(AttachmentRemovals)
	reg.MustRegister(HTTPRequestDuration)
}
