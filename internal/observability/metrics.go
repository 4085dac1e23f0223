package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blackdwarf_parsing_seconds",
		Help:    "Time spent parsing a Python source file.",
		Buckets: prometheus.DefBuckets,
	})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blackdwarf_resolve_seconds",
		Help:    "Time spent resolving wildcard imports for a file.",
		Buckets: prometheus.DefBuckets,
	})

	ProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blackdwarf_process_seconds",
		Help:    "End-to-end time spent processing a single file.",
		Buckets: prometheus.DefBuckets,
	})

	FormatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blackdwarf_format_seconds",
		Help:    "Time spent running the external formatter.",
		Buckets: prometheus.DefBuckets,
	})

	FilesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_files_processed_total",
		Help: "Total number of files run through the rewrite pipeline.",
	})

	FilesChangedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_files_changed_total",
		Help: "Total number of files whose imports were rewritten.",
	})

	FilesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_files_failed_total",
		Help: "Total number of files that failed parsing or resolution.",
	})

	WildcardsSeenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_wildcards_seen_total",
		Help: "Total number of wildcard imports encountered.",
	})

	WildcardOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackdwarf_wildcard_outcomes_total",
		Help: "Wildcard import resolutions by outcome.",
	}, []string{"outcome"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackdwarf_diagnostics_total",
		Help: "Diagnostics emitted during resolution by kind.",
	}, []string{"kind"})

	ExportListsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_export_lists_written_total",
		Help: "Total number of __all__ lists written to dependency modules.",
	})

	ModulesLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_modules_loaded_total",
		Help: "Total number of dependency modules parsed for their export surface.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackdwarf_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
