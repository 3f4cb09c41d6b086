package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "picklist"

const (
	OutcomeSuccess      = "success"
	OutcomePrecondition = "precondition"
	OutcomeError        = "error"
)

// Recorder collects allocation run metrics
type Recorder struct {
	runs        *prometheus.CounterVec
	rows        *prometheus.CounterVec
	shortages   *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewRecorder creates the collectors and registers them on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Count of allocation runs by outcome.",
			},
			[]string{"outcome"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Count of allocation rows produced, by tracking mode.",
			},
			[]string{"tracking"},
		),
		shortages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shortages_total",
				Help:      "Count of shortage notices, by tracking mode.",
			},
			[]string{"tracking"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of allocation runs.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}
	reg.MustRegister(r.runs, r.rows, r.shortages, r.runDuration)
	return r
}

// ObserveRun records the outcome and duration of one run
func (r *Recorder) ObserveRun(outcome string, duration time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(duration.Seconds())
}

// AddRows counts rows produced for a tracking mode
func (r *Recorder) AddRows(tracking string, n int) {
	r.rows.WithLabelValues(tracking).Add(float64(n))
}

// AddShortages counts shortage notices for a tracking mode
func (r *Recorder) AddShortages(tracking string, n int) {
	r.shortages.WithLabelValues(tracking).Add(float64(n))
}

// Runs returns the run counter for an outcome
func (r *Recorder) Runs(outcome string) prometheus.Counter {
	return r.runs.WithLabelValues(outcome)
}
