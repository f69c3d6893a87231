package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marsrover",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marsrover",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	commandSequences = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marsrover",
			Name:      "commands_total",
			Help:      "Command sequences applied to rovers, by outcome.",
		},
		[]string{"outcome"},
	)
	rollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marsrover",
			Name:      "rollbacks_total",
			Help:      "Rovers returned to their initial placement, by error kind.",
		},
		[]string{"kind"},
	)
	roversDeployed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marsrover",
			Name:      "rovers_deployed_total",
			Help:      "Rovers successfully placed on a grid.",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marsrover",
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, commandSequences, rollbacks, roversDeployed, activeSessions)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCommandSequence counts a sequence outcome. kind is the engine error
// kind, empty on success. rolledBack marks sequences that ended in a rollback.
func RecordCommandSequence(kind string, rolledBack bool) {
	RegisterMetrics()
	outcome := "success"
	if kind != "" {
		outcome = kind
	}
	commandSequences.WithLabelValues(outcome).Inc()
	if rolledBack {
		rollbacks.WithLabelValues(kind).Inc()
	}
}

func RecordRoverDeployed() {
	RegisterMetrics()
	roversDeployed.Inc()
}

func SetActiveSessions(n int) {
	RegisterMetrics()
	activeSessions.Set(float64(n))
}
