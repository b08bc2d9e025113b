package paramsweep

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Report is the JSON document written by "paramsweep run --json".
//
// Example usage in a CI step written in Go:
//
//	rep, err := paramsweep.LoadReport("report.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range rep.FailedCases() {
//	    fmt.Printf("%s: measured %v (diff %v) %s\n", c.Name, c.Measured, c.Diff, c.Error)
//	}
//	os.Exit(rep.ExitCode())
type Report struct {
	RunID      string  `json:"run_id"`
	Suite      string  `json:"suite"`
	Reference  float64 `json:"reference"`
	Tolerance  float64 `json:"tolerance"`
	Mode       string  `json:"mode"`
	Total      int     `json:"total"`
	Failed     int     `json:"failed"`
	DurationMs int64   `json:"duration_ms"`
	Cases      []Case  `json:"cases"`
}

// Case is one judged case of a Report.
type Case struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Measured   Number `json:"measured"`
	Diff       Number `json:"diff"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Number is a float that also decodes the strings "NaN", "Infinity" and
// "-Infinity" used for non-finite values.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*n = Number(math.NaN())
		case "Infinity", "+Infinity":
			*n = Number(math.Inf(1))
		case "-Infinity":
			*n = Number(math.Inf(-1))
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// ReadReport decodes a report.
func ReadReport(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}

// LoadReport reads a report file.
func LoadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReport(f)
}

// FailedCases returns the failed cases in the order they appear.
func (r *Report) FailedCases() []Case {
	var failed []Case
	for _, c := range r.Cases {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// ExitCode returns the exit status the sweep that wrote the report ended
// with.
func (r *Report) ExitCode() int {
	return FailureExitCode(r.Failed)
}
