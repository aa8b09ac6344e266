package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tejiriaustin/filemonitor/models"
	"github.com/tejiriaustin/filemonitor/monitoring"
)

type Metrics struct {
	eventsTotal  *prometheus.CounterVec
	cyclesTotal  prometheus.Counter
	trackedFiles prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filemonitor_events_total",
				Help: "Total number of file events emitted",
			},
			[]string{"operation"},
		),
		cyclesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "filemonitor_cycles_total",
				Help: "Total number of completed monitoring cycles",
			},
		),
		trackedFiles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "filemonitor_tracked_files",
				Help: "Number of paths in the snapshot after the last cycle",
			},
		),
	}
}

func (m *Metrics) Emit(event models.Event) {
	m.eventsTotal.WithLabelValues(string(event.Operation)).Inc()
}

// ObserveCycle is meant to be passed to monitoring.WithCycleHook.
func (m *Metrics) ObserveCycle(result monitoring.CycleResult) {
	m.cyclesTotal.Inc()
	m.trackedFiles.Set(float64(result.Tracked))
}
