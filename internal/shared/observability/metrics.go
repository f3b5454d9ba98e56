package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docref_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	BuildPhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docref_build_phase_seconds",
		Help:    "Time spent in a build phase (parse, index, resolve, render).",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	ModelEntities = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docref_model_entities_total",
		Help: "Total number of entities in the current source model.",
	})

	ModelModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docref_model_modules_total",
		Help: "Total number of modules in the current source model.",
	})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docref_resolutions_total",
		Help: "Total number of reference resolutions by outcome.",
	}, []string{"outcome"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docref_diagnostics_total",
		Help: "Total number of build diagnostics by severity.",
	}, []string{"severity"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docref_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	PagesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docref_pages_rendered_total",
		Help: "Total number of documentation pages written.",
	})
)
