// Package metrics exposes Prometheus metrics for the board engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the board engine's Prometheus collectors. Construct once per
// process; promauto registers against the default registry.
type Metrics struct {
	EventsProcessed *prometheus.CounterVec
	ObjectsAppended prometheus.Counter
	BoardsCreated   prometheus.Counter
	BoardsDestroyed prometheus.Counter
	BoardsExpired   prometheus.Counter
}

// New creates and registers all board engine metrics.
func New() *Metrics {
	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "easel_channel_events_total",
			Help: "Channel events processed, partitioned by command and outcome.",
		}, []string{"command", "outcome"}),
		ObjectsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easel_canvas_objects_appended_total",
			Help: "Canvas objects appended across all boards.",
		}),
		BoardsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easel_boards_created_total",
			Help: "Boards created.",
		}),
		BoardsDestroyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easel_boards_destroyed_total",
			Help: "Boards destroyed explicitly or by the expiry janitor.",
		}),
		BoardsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easel_boards_expired_total",
			Help: "Ownerless boards removed by the expiry janitor.",
		}),
	}
}

// ObserveEvent records one processed channel event. Nil-safe so tests can
// run services without a registry.
func (m *Metrics) ObserveEvent(command, outcome string) {
	if m == nil {
		return
	}
	m.EventsProcessed.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) IncObjectsAppended() {
	if m == nil {
		return
	}
	m.ObjectsAppended.Inc()
}

func (m *Metrics) IncBoardsCreated() {
	if m == nil {
		return
	}
	m.BoardsCreated.Inc()
}

func (m *Metrics) IncBoardsDestroyed() {
	if m == nil {
		return
	}
	m.BoardsDestroyed.Inc()
}

func (m *Metrics) IncBoardsExpired() {
	if m == nil {
		return
	}
	m.BoardsExpired.Inc()
}
