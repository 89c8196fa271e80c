package metrics

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlatformPosts counts platform invocations by outcome.
	PlatformPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosspost_platform_posts_total",
		Help: "Total number of platform post attempts by platform and result",
	}, []string{"platform", "result"})

	// PlatformLatency records how long each platform invocation took.
	PlatformLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crosspost_platform_post_duration_seconds",
		Help:    "Duration of platform post calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})

	// Executions counts finished executions of scheduled posts by final status.
	Executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosspost_scheduled_executions_total",
		Help: "Total number of scheduled post executions by final status",
	}, []string{"status"})

	SchedulerCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crosspost_scheduler_cycle_duration_seconds",
		Help:    "Duration of a scheduler polling cycle in seconds",
		Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
	})

	SchedulerDuePosts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crosspost_scheduler_due_posts",
		Help: "Number of due posts found by the last scheduler cycle",
	})

	// MediaFilesRemoved counts staged uploads deleted by the cleanup job.
	MediaFilesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosspost_media_files_removed_total",
		Help: "Total number of staged media files removed by cleanup",
	})
)

// NewHTTPMetrics returns the request metrics middleware for the API.
func NewHTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

func Result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
