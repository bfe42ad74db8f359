// Package metrics содержит prometheus-метрики пайплайна.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "optimization_report"

var (
	// RunsTotal считает запуски пайплайна по результату
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"result"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
		},
	)

	// StageProgress - процент выполнения текущей стадии
	StageProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_progress_percent",
			Help:      "Progress of the current pipeline stage",
		},
		[]string{"stage"},
	)

	RegionFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_region_failures_total",
			Help:      "Directory sub-regions skipped after exhausting retries",
		},
	)

	// SceneChecksTotal считает проверки сцен по стадии и исходу
	SceneChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_checks_total",
			Help:      "Per-scene optimizer checks",
		},
		[]string{"stage", "result"},
	)

	SceneCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scene_check_duration_seconds",
			Help:      "Duration of per-scene optimizer checks",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	OverlapConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlap_conflicts_total",
			Help:      "Parcels claimed by more than one scene",
		},
	)

	PublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Failed artifact uploads by object kind",
		},
		[]string{"object"},
	)

	OptimizationPercentage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimization_percentage",
			Help:      "Share of scenes with optimized assets in the last published report",
		},
	)

	LastPublishedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_published_timestamp_seconds",
			Help:      "Unix time of the last successfully published report",
		},
	)
)

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordRun фиксирует завершение запуска
func RecordRun(ok bool, d time.Duration) {
	RunsTotal.WithLabelValues(result(ok)).Inc()
	RunDuration.Observe(d.Seconds())
}

// RecordSceneCheck фиксирует проверку одной сцены
func RecordSceneCheck(stage string, ok bool, d time.Duration) {
	SceneChecksTotal.WithLabelValues(stage, result(ok)).Inc()
	SceneCheckDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func RecordPublished(at time.Time, percentage float64) {
	LastPublishedTimestamp.Set(float64(at.Unix()))
	OptimizationPercentage.Set(percentage)
}
