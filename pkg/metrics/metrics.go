package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordCRDTOperation records a counter operation by kind
func (r *Registry) RecordCRDTOperation(kind, operation string) {
	r.CRDTOperationsTotal.WithLabelValues(kind, operation).Inc()
}
