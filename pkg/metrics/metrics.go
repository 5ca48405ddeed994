// Package metrics records run outcomes in a Prometheus registry that can be
// written out for the node exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/migrator"
)

const namespace = "swellow"

// Recorder holds the metrics of a single process.
type Recorder struct {
	registry *prometheus.Registry

	runs       *prometheus.CounterVec
	versions   *prometheus.CounterVec
	statements prometheus.Counter
	duration   *prometheus.HistogramVec
	current    prometheus.Gauge
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of commands run, by outcome",
		}, []string{"command", "status"}),
		versions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "versions_total",
			Help:      "Total number of versions executed",
		}, []string{"direction"}),
		statements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_total",
			Help:      "Total number of statements executed",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of commands in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		current: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_version",
			Help:      "Version the ledger was moved to by the last committed run",
		}),
	}

	r.registry.MustRegister(r.runs, r.versions, r.statements, r.duration, r.current)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordCommand counts a finished command and observes its duration.
func (r *Recorder) RecordCommand(command string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.runs.WithLabelValues(command, status).Inc()
	r.duration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordMigration counts the versions and statements of a migration run. The
// current version gauge only moves when the run was committed.
func (r *Recorder) RecordMigration(res *executor.Result) {
	if res == nil {
		return
	}

	r.versions.WithLabelValues(res.Direction.String()).Add(float64(len(res.Versions)))
	r.statements.Add(float64(res.Statements()))

	if res.State != executor.Committed {
		return
	}

	switch {
	case res.Direction == migrator.Down && res.Plan != nil:
		r.current.Set(float64(res.Plan.From))
	case res.Direction == migrator.Up:
		if last, ok := res.LastVersion(); ok {
			r.current.Set(float64(last))
		}
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.registry), "failed to write metrics to %s", path)
}
