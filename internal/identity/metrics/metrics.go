package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module.
// Tracks registrations, login outcomes, and login latency.
type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginSuccess    prometheus.Counter
	LoginFailure    prometheus.Counter
	LoginDuration   prometheus.Histogram
}

// New creates a Metrics instance with all identity module metrics registered.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proctor_users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proctor_logins_success_total",
			Help: "Total number of successful logins",
		}),
		LoginFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "proctor_logins_failure_total",
			Help: "Total number of failed login attempts",
		}),
		LoginDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proctor_login_duration_seconds",
			Help:    "Duration of Login operations (credential check plus session write)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementUsersRegistered records a successful registration.
func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

// ObserveLogin records the duration of a Login operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLogin(start time.Time) {
	m.LoginDuration.Observe(time.Since(start).Seconds())
}
