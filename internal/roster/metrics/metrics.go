package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the roster module.
type Metrics struct {
	GroupsCreated       prometheus.Counter
	GroupsDeleted       prometheus.Counter
	CreateGroupDuration prometheus.Histogram
}

// New creates a Metrics instance with all roster module metrics registered.
func New() *Metrics {
	return &Metrics{
		GroupsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proctor_groups_created_total",
			Help: "Total number of distribution groups created",
		}),
		GroupsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proctor_groups_deleted_total",
			Help: "Total number of distribution groups deleted",
		}),
		CreateGroupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proctor_create_group_duration_seconds",
			Help:    "Duration of CreateGroup operations (member validation plus insert)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCreateGroup records the duration of a CreateGroup operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateGroup(start time.Time) {
	m.CreateGroupDuration.Observe(time.Since(start).Seconds())
}
