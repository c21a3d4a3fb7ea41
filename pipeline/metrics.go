package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tablesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phenotab_tables_processed_total",
		Help: "Source tables successfully loaded and contextualized.",
	})
	subjectsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phenotab_subjects_built_total",
		Help: "Subject records assembled across all runs.",
	})
	collectErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phenotab_collect_errors_total",
		Help: "Runs aborted by a collector error.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phenotab_run_duration_seconds",
		Help:    "Wall-clock duration of complete pipeline runs.",
		Buckets: prometheus.DefBuckets,
	})
)
