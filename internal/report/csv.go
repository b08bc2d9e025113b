package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

var csvHeader = []string{"index", "name", "passed", "measured", "reference", "diff", "duration_ms", "error"}

// WriteCSV writes one row per verdict in case index order.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range r.Verdicts() {
		errText := ""
		if v.Err != nil {
			errText = v.Err.Error()
		}
		row := []string{
			strconv.Itoa(v.Index),
			v.Case,
			strconv.FormatBool(v.Passed),
			settings.FormatFloat(v.Measured),
			settings.FormatFloat(v.Reference),
			settings.FormatFloat(v.Diff),
			strconv.FormatInt(v.Duration.Milliseconds(), 10),
			errText,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
