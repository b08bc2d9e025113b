package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// Document is the JSON form of a finished sweep. Non-finite numbers are
// stored as the strings "NaN", "Infinity" and "-Infinity".
type Document struct {
	RunID      string       `json:"run_id"`
	Suite      string       `json:"suite"`
	Reference  float64      `json:"reference"`
	Tolerance  float64      `json:"tolerance"`
	Mode       verdict.Mode `json:"mode"`
	Total      int          `json:"total"`
	Failed     int          `json:"failed"`
	DurationMs int64        `json:"duration_ms"`
	Cases      []CaseRecord `json:"cases"`
}

// CaseRecord is one verdict in a Document.
type CaseRecord struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Measured   any    `json:"measured"`
	Diff       any    `json:"diff"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Document builds the JSON form of the report.
func (r *Report) Document(s Summary) Document {
	doc := Document{
		RunID:      r.RunID,
		Suite:      r.Suite,
		Reference:  r.Reference,
		Tolerance:  r.Options.Tolerance,
		Mode:       r.Options.Mode,
		Total:      s.Total,
		Failed:     s.Failed,
		DurationMs: s.Duration.Milliseconds(),
	}
	for _, v := range r.Verdicts() {
		rec := CaseRecord{
			Index:      v.Index,
			Name:       v.Case,
			Passed:     v.Passed,
			Measured:   jsonFloat(v.Measured),
			Diff:       jsonFloat(v.Diff),
			DurationMs: v.Duration.Milliseconds(),
		}
		if v.Err != nil {
			rec.Error = v.Err.Error()
		}
		doc.Cases = append(doc.Cases, rec)
	}
	return doc
}

func jsonFloat(f float64) any {
	if s, ok := verdict.FormatSpecialFloat(f); ok {
		return s
	}
	return f
}

// WriteJSON writes the report as an indented JSON document.
func (r *Report) WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Document(s))
}

// ReadDocument decodes a report written by WriteJSON.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode report: %w", err)
	}
	return doc, nil
}

// LoadDocument reads a report file.
func LoadDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return ReadDocument(f)
}

// Mismatch is a case whose measurement differs between two reports.
type Mismatch struct {
	Name   string
	Detail string
}

// CompareDocuments checks every baseline case against the case of the same
// name in current, comparing measured values under opts. Cases only present
// in current are ignored.
func CompareDocuments(current, baseline Document, opts verdict.Options) []Mismatch {
	byName := make(map[string]CaseRecord, len(current.Cases))
	for _, c := range current.Cases {
		byName[c.Name] = c
	}

	var mismatches []Mismatch
	for _, want := range baseline.Cases {
		got, ok := byName[want.Name]
		if !ok {
			mismatches = append(mismatches, Mismatch{Name: want.Name, Detail: "missing from report"})
			continue
		}
		if ok, diff := verdict.Compare(want.Measured, got.Measured, opts); !ok {
			mismatches = append(mismatches, Mismatch{Name: want.Name, Detail: diff})
		}
	}
	return mismatches
}
