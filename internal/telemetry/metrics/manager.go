package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterSessionsStarted     prometheus.Counter
	CounterWorkoutsSaved       prometheus.Counter
	CounterWorkoutSaveFailures prometheus.Counter
	CounterSessionsDiscarded   prometheus.Counter

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeLifeSignal     prometheus.Gauge
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
	HistWorkoutDuration      prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("backend", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("backend", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}
	}

	return &Manager{
		CounterRequests: factory.NewCounterVec(
			counterOpts("request", "The total number of incoming requests"),
			[]string{"method", "status"},
		),
		CounterHandleRequestPanic:  factory.NewCounter(counterOpts("handle_request_panic", "The total number of serve request panics")),
		CounterRateLimitedRequests: factory.NewCounter(counterOpts("rate_limited_requests", "The total number of rate limited requests")),
		CounterSessionsStarted:     factory.NewCounter(counterOpts("workout_sessions_started", "The total number of opened workout recording sessions")),
		CounterWorkoutsSaved:       factory.NewCounter(counterOpts("workouts_saved", "The total number of persisted workouts")),
		CounterWorkoutSaveFailures: factory.NewCounter(counterOpts("workout_save_failures", "The total number of failed workout writes")),
		CounterSessionsDiscarded:   factory.NewCounter(counterOpts("workout_sessions_discarded", "The total number of discarded or expired workout sessions")),

		GaugeRequests:       factory.NewGauge(gaugeOpts("current_requests", "Current number of requests served")),
		GaugeLifeSignal:     factory.NewGauge(gaugeOpts("life_signal", "Shows whether the service is alive")),
		GaugeActiveSessions: factory.NewGauge(gaugeOpts("active_workout_sessions", "Current number of in-memory workout sessions")),

		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "status_code"}),
		HistWorkoutDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workout_duration_minutes",
			Help:      "Duration of persisted workouts in minutes",
			Buckets:   []float64{5, 15, 30, 45, 60, 75, 90, 120, 180},
		}),
	}
}
