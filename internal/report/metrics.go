package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WriteMetrics writes the sweep results in the Prometheus text format to
// path, for collection by a node exporter textfile collector.
func (r *Report) WriteMetrics(path string, s Summary) error {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"suite": r.Suite}

	cases := factory.NewCounterVec(prometheus.CounterOpts{
		Name:        "paramsweep_cases_total",
		Help:        "Number of sweep cases by outcome.",
		ConstLabels: labels,
	}, []string{"outcome"})
	duration := factory.NewHistogram(prometheus.HistogramOpts{
		Name:        "paramsweep_case_duration_seconds",
		Help:        "Wall-clock duration of each solver run.",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.01, 4, 10),
	})
	maxDiff := factory.NewGauge(prometheus.GaugeOpts{
		Name:        "paramsweep_max_abs_diff",
		Help:        "Largest finite difference from the reference value.",
		ConstLabels: labels,
	})
	sweepSeconds := factory.NewGauge(prometheus.GaugeOpts{
		Name:        "paramsweep_sweep_duration_seconds",
		Help:        "Wall-clock duration of the whole sweep.",
		ConstLabels: labels,
	})

	cases.WithLabelValues("passed").Add(0)
	cases.WithLabelValues("failed").Add(0)
	for _, v := range r.Verdicts() {
		if v.Passed {
			cases.WithLabelValues("passed").Inc()
		} else {
			cases.WithLabelValues("failed").Inc()
		}
		duration.Observe(v.Duration.Seconds())
	}
	maxDiff.Set(s.MaxDiff)
	sweepSeconds.Set(s.Duration.Seconds())

	return prometheus.WriteToTextfile(path, reg)
}
