package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders an HTML scatter plot of |measured-reference| per case
// index. Cases without a value are drawn at the top of the plot.
func (r *Report) WriteChart(w io.Writer, s Summary) error {
	verdicts := r.Verdicts()

	ceiling := math.Max(s.MaxDiff, r.Options.Tolerance) * 2
	if ceiling == 0 {
		ceiling = 1
	}

	passed := make([]opts.ScatterData, 0, len(verdicts))
	var failed []opts.ScatterData
	for _, v := range verdicts {
		diff := v.Diff
		if math.IsInf(diff, 0) || math.IsNaN(diff) {
			diff = ceiling
		}
		pt := opts.ScatterData{Name: v.Case, Value: []interface{}{v.Index, diff}}
		if v.Passed {
			passed = append(passed, pt)
		} else {
			failed = append(failed, pt)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "paramsweep " + r.Suite, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    r.Suite,
			Subtitle: fmt.Sprintf("run=%s cases=%d failed=%d tolerance=%s", r.RunID, s.Total, s.Failed, r.Options),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "case", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "|diff|", NameLocation: "middle", NameGap: 50}),
	)
	scatter.AddSeries("passed", passed, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("failed", failed, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	return scatter.Render(w)
}
