package metrics

import "github.com/prometheus/client_golang/prometheus"

// FormMetrics exposes counters/histograms for form storage operations.
type FormMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationLatency  *prometheus.HistogramVec
	initializations   *prometheus.CounterVec
	rateLimitRejected prometheus.Counter
}

func NewFormMetrics(reg prometheus.Registerer) *FormMetrics {
	m := &FormMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sshrobotics",
			Subsystem: "forms",
			Name:      "operations_total",
			Help:      "Total storage operations by backend, operation and outcome",
		}, []string{"backend", "operation", "status"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sshrobotics",
			Subsystem: "forms",
			Name:      "operation_duration_seconds",
			Help:      "Latency of storage operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		initializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sshrobotics",
			Subsystem: "forms",
			Name:      "provider_initializations_total",
			Help:      "Provider initialization attempts by backend and outcome",
		}, []string{"backend", "status"}),
		rateLimitRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sshrobotics",
			Subsystem: "forms",
			Name:      "rate_limited_total",
			Help:      "Submissions rejected by the rate limiter",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.operationLatency, m.initializations, m.rateLimitRejected)
	return m
}

func (m *FormMetrics) ObserveOperation(backend, operation string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(backend, operation, statusLabel(ok)).Inc()
	m.operationLatency.WithLabelValues(backend, operation).Observe(seconds)
}

func (m *FormMetrics) ObserveInitialization(backend string, ok bool) {
	if m == nil {
		return
	}
	m.initializations.WithLabelValues(backend, statusLabel(ok)).Inc()
}

func (m *FormMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitRejected.Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
