package dispatch

import (
	"time"

	"rental-notify/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// jobsDispatchedTotal tracks dispatch outcomes per terminal reason
	jobsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_jobs_dispatched_total",
			Help: "Total number of job dispatch attempts",
		},
		[]string{"outcome"}, // processed|load_failed|prefs_failed
	)

	// channelsSuppressedTotal tracks channels filtered before delivery
	channelsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_channels_suppressed_total",
			Help: "Total number of channel deliveries suppressed before dispatch",
		},
		[]string{"channel", "reason"}, // reason: opt_out|topic_opt_out|quiet_hours|pool_full
	)

	// dispatchDuration tracks whole-job fan-out duration
	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_dispatch_duration_seconds",
			Help:    "Job fan-out duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30},
		},
	)
)

func recordJob(outcome string) {
	jobsDispatchedTotal.WithLabelValues(outcome).Inc()
}

func recordSuppressed(ch entity.Channel, reason string) {
	channelsSuppressedTotal.WithLabelValues(string(ch), reason).Inc()
}

func observeDispatch(d time.Duration) {
	dispatchDuration.Observe(d.Seconds())
}
