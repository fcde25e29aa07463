package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.05, 0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	dispatchCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_calls_total", Help: "endpoint calls by endpoint, locality and outcome code"},
		[]string{"endpoint", "locality", "code"},
	)

	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_call_duration_seconds",
			Help:    "endpoint call latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "locality"},
	)

	handlerInstances = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_handler_instances_total", Help: "local handler instances constructed"},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		dispatchCalls,
		dispatchDuration,
		handlerInstances,
	)
}
