// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	AssetLoads    *prometheus.CounterVec
	AssetLoadSize prometheus.Histogram
	CascadeFired  prometheus.Counter
	Activations   *prometheus.CounterVec
	PositionEdits prometheus.Counter
	HistoryMoves  *prometheus.CounterVec
	ActiveObjects prometheus.Gauge
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AssetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_asset_loads_total",
			Help: "Total asset load attempts by result",
		}, []string{"result"}),
		AssetLoadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvas_asset_bytes",
			Help:    "Decoded asset sizes in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		CascadeFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "canvas_cascade_fired_total",
			Help: "Total cascade timer firings",
		}),
		Activations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_activations_total",
			Help: "Total activation transitions by direction",
		}, []string{"action"}),
		PositionEdits: factory.NewCounter(prometheus.CounterOpts{
			Name: "canvas_position_edits_total",
			Help: "Total committed position edits",
		}),
		HistoryMoves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_history_moves_total",
			Help: "Total undo/redo cursor moves",
		}, []string{"direction"}),
		ActiveObjects: factory.NewGauge(prometheus.GaugeOpts{
			Name: "canvas_active_objects",
			Help: "Number of objects currently active",
		}),
	}
}

// NewNop returns collectors bound to a private registry, for callers that
// do not export metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
