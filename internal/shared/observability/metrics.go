package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every cppuml metric so a run can be dumped to a textfile
// without the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Metrics definitions
var (
	ParsingDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "cppuml_parsing_seconds",
		Help:    "Time spent parsing one translation unit.",
		Buckets: prometheus.DefBuckets,
	})

	UnitsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cppuml_units_total",
		Help: "Translation units processed, by result.",
	}, []string{"result"})

	SyntaxErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cppuml_syntax_errors_total",
		Help: "Translation units that parsed with recoverable syntax errors.",
	})

	ModelClasses = factory.NewGauge(prometheus.GaugeOpts{
		Name: "cppuml_model_classes",
		Help: "Number of classes in the last built model.",
	})

	ModelNamespaces = factory.NewGauge(prometheus.GaugeOpts{
		Name: "cppuml_model_namespaces",
		Help: "Number of namespaces in the last built model.",
	})

	AnalysisDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cppuml_analysis_seconds",
		Help:    "Time spent on pipeline stages.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	ArtifactsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cppuml_artifacts_total",
		Help: "Diagram artifacts written, by kind and result.",
	}, []string{"kind", "result"})

	WatcherEventsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cppuml_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cppuml_runs_total",
		Help: "Completed pipeline runs, by status.",
	}, []string{"status"})
)

// WriteTextfile dumps the registry in Prometheus text format, suitable for
// the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
