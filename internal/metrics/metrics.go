package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters and timings, exposed on /metrics.
var (
	JobsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizreels_jobs_accepted_total",
		Help: "Number of video generation requests accepted.",
	})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizreels_jobs_completed_total",
		Help: "Number of jobs that produced a final video.",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizreels_jobs_failed_total",
		Help: "Number of jobs that ended in the failed state.",
	})

	QueueRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizreels_queue_retries_total",
		Help: "Number of times a task was re-queued after a failed attempt.",
	})

	FallbackSubstitutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizreels_fallback_substitutions_total",
		Help: "Degraded-asset substitutions by pipeline stage.",
	}, []string{"stage"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quizreels_render_duration_seconds",
		Help:    "Wall-clock time of a full job render.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 8),
	})
)
