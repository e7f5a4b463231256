package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa as métricas do gate. Um registry próprio por instância
// permite criar várias em testes sem colisão de registro.
//
// Métodos aceitam receiver nil (métricas desligadas).
type Metrics struct {
	admissions      *prometheus.CounterVec
	controlAttempts *prometheus.CounterVec
	controlThrottle prometheus.Counter
	gateEnabled     prometheus.Gauge
	statsDropped    prometheus.Counter
	registry        *prometheus.Registry
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "requestcontrol"
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Admission decisions by result and reason",
		},
		[]string{"result", "reason"},
	)
	m.controlAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_attempts_total",
			Help:      "Control operations by operation and result",
		},
		[]string{"operation", "result"},
	)
	m.controlThrottle = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_throttled_total",
			Help:      "Control requests rejected by the per-client limiter",
		},
	)
	m.gateEnabled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gate_enabled",
			Help:      "1 when requests are accepted, 0 when the gate is closed",
		},
	)

	m.statsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_dropped_total",
			Help:      "Admission stats events dropped because the write buffer was full",
		},
	)

	m.registry.MustRegister(m.admissions, m.controlAttempts, m.controlThrottle, m.gateEnabled, m.statsDropped)
	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) ObserveAdmission(allowed bool, reason string) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	m.admissions.WithLabelValues(result, reason).Inc()
}

func (m *Metrics) ObserveControl(operation string, authorized bool) {
	if m == nil {
		return
	}
	result := "authorized"
	if !authorized {
		result = "unauthorized"
	}
	m.controlAttempts.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveThrottled() {
	if m == nil {
		return
	}
	m.controlThrottle.Inc()
}

func (m *Metrics) ObserveStatsDropped() {
	if m == nil {
		return
	}
	m.statsDropped.Inc()
}

func (m *Metrics) SetGateEnabled(enabled bool) {
	if m == nil {
		return
	}
	if enabled {
		m.gateEnabled.Set(1)
		return
	}
	m.gateEnabled.Set(0)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler expõe o registry no formato do Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
