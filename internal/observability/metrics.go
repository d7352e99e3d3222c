package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetrail",
		Name:      "records_processed_total",
		Help:      "Total number of batch records dispatched, by kind and outcome",
	}, []string{"kind", "outcome"})

	DetectionJobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetrail",
		Name:      "detection_jobs_submitted_total",
		Help:      "Total number of face-detection job submissions",
	}, []string{"outcome"})

	DetectionJobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetrail",
		Name:      "detection_jobs_completed_total",
		Help:      "Total number of detection completion notices handled, by job status",
	}, []string{"status"})

	AppearancesStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "facetrail",
		Name:      "appearances_stored_total",
		Help:      "Total number of appearance records written",
	})

	ThumbnailJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetrail",
		Name:      "thumbnail_jobs_total",
		Help:      "Total number of thumbnail triggers, by outcome",
	}, []string{"outcome"})

	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "facetrail",
		Name:      "batch_duration_seconds",
		Help:      "Duration of event batch handling",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "facetrail",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
