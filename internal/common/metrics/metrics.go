// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_job_outcomes_total",
			Help: "Jobs by the command the handler issued (completed, failed, error_thrown, none)",
		},
		[]string{"task_type", "outcome"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	StartupScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "startup_investability_score",
			Help:    "Distribution of computed investability scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	MatchmakingsAssigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmakings_assigned_total",
			Help: "Investor/startup pairings created",
		},
	)

	MatchmakingsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmakings_archived_total",
			Help: "Pairings archived after their visibility window",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Outbound notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)
