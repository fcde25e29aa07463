package metrics

import (
	"strconv"
	"time"
)

// ObserveCall records one settled endpoint call.
func ObserveCall(endpoint, locality string, code int, took time.Duration) {
	dispatchCalls.WithLabelValues(endpoint, locality, strconv.Itoa(code)).Inc()
	dispatchDuration.WithLabelValues(endpoint, locality).Observe(took.Seconds())
}

// HandlerCreated records construction of a local handler instance.
func HandlerCreated(endpoint string) {
	handlerInstances.WithLabelValues(endpoint).Inc()
}
