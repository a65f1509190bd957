package plugins

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opInstall    = "install"
	opActivate   = "activate"
	opDeactivate = "deactivate"
	opUninstall  = "uninstall"

	resultOK       = "ok"
	resultError    = "error"
	resultRejected = "rejected"
)

// Metrics holds Prometheus counters for lifecycle operations.
type Metrics struct {
	OperationsTotal *prometheus.CounterVec
	PluginsListed   prometheus.Gauge
}

// NewMetrics creates and registers lifecycle metrics. registry may be nil
// to use the default registerer.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginman_operations_total",
				Help: "Total number of plugin lifecycle operations",
			},
			[]string{"operation", "result"},
		),
		PluginsListed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluginman_plugins_listed",
				Help: "Number of plugins in the registry at last refresh",
			},
		),
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	if registry != nil {
		reg = registry
	}
	reg.MustRegister(m.OperationsTotal, m.PluginsListed)

	return m
}

// observe records an operation outcome. Safe on a nil receiver so callers
// without metrics configured pay nothing.
func (m *Metrics) observe(operation, result string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
}

// SetListed records the registry size. Safe on a nil receiver.
func (m *Metrics) SetListed(n int) {
	if m == nil {
		return
	}
	m.PluginsListed.Set(float64(n))
}
