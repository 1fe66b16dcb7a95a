package api

import (
	"net/http"
	"runtime"
	"strconv"
	"time"
)

// metricsUpdateInterval is how often system gauges are refreshed
const metricsUpdateInterval = 10 * time.Second

// metricsResponseWriter wraps http.ResponseWriter to capture the
// status code and bytes written for metrics recording
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	mrw.statusCode = code
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.bytesWritten += n
	return n, err
}

// metricsMiddleware records request counts, latency, in-flight gauge
// and response sizes for every request
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metricsRegistry.HTTPRequestsInFlight.Inc()
		defer s.metricsRegistry.HTTPRequestsInFlight.Dec()

		mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(mrw, r)

		status := strconv.Itoa(mrw.statusCode)
		s.metricsRegistry.RecordHTTPRequest(r.Method, r.URL.Path, status, time.Since(start))
		s.metricsRegistry.HTTPResponseSizeBytes.
			WithLabelValues(r.Method, r.URL.Path).
			Observe(float64(mrw.bytesWritten))
	}
}

// StartMetricsUpdater launches the background goroutine that refreshes
// system gauges. Call StopMetricsUpdater to terminate it.
func (s *Server) StartMetricsUpdater() {
	s.metricsWg.Add(1)
	go s.updateMetricsPeriodically()
}

// StopMetricsUpdater stops the background updater and waits for it to
// exit. Safe to call more than once.
func (s *Server) StopMetricsUpdater() {
	s.metricsStopOnce.Do(func() {
		close(s.metricsStopCh)
	})
	s.metricsWg.Wait()
}

func (s *Server) updateMetricsPeriodically() {
	defer s.metricsWg.Done()

	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	s.collectSystemMetrics()
	for {
		select {
		case <-s.metricsStopCh:
			return
		case <-ticker.C:
			s.collectSystemMetrics()
		}
	}
}

func (s *Server) collectSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.metricsRegistry.UptimeSeconds.Set(time.Since(s.startTime).Seconds())
	s.metricsRegistry.GoRoutines.Set(float64(runtime.NumGoroutine()))
	s.metricsRegistry.MemoryAllocBytes.Set(float64(m.Alloc))
	s.metricsRegistry.MemorySysBytes.Set(float64(m.Sys))
}
