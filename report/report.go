// Package report writes sweep results for people and for downstream plotting
// tools.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/domino14/wildcat/stats"
	"github.com/domino14/wildcat/sweep"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Format string

const (
	FormatTable     Format = "table"
	FormatCSV       Format = "csv"
	FormatJSON      Format = "json"
	FormatYAML      Format = "yaml"
	FormatHeatmap   Format = "heatmap"
	FormatHistogram Format = "histogram"
)

var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatHeatmap, FormatHistogram}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Row is the serialized form of a cell. EMV is nil for invalid cells so the
// encoders never see a NaN.
type Row struct {
	P     float64  `json:"p" yaml:"p"`
	Q     float64  `json:"q" yaml:"q"`
	EMV   *float64 `json:"emv" yaml:"emv"`
	Error string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Document is what the JSON and YAML writers emit.
type Document struct {
	Grid    sweep.Grid    `json:"grid" yaml:"grid"`
	Summary stats.Summary `json:"summary" yaml:"summary"`
	Invalid int           `json:"invalid" yaml:"invalid"`
	Cells   []Row         `json:"cells" yaml:"cells"`
}

func rows(res *sweep.Result) []Row {
	out := make([]Row, len(res.Cells))
	for i, c := range res.Cells {
		out[i] = Row{P: c.P, Q: c.Q}
		if c.Valid() {
			emv := c.EMV
			out[i].EMV = &emv
		} else {
			out[i].Error = c.Err.Error()
		}
	}
	return out
}

func NewDocument(res *sweep.Result) Document {
	return Document{
		Grid:    res.Grid,
		Summary: res.Summary(),
		Invalid: len(res.Invalid()),
		Cells:   rows(res),
	}
}

// Write renders res to w in format f.
func Write(w io.Writer, f Format, res *sweep.Result) error {
	switch f {
	case FormatTable:
		return WriteTable(w, res)
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(res))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(res)); err != nil {
			return err
		}
		return enc.Close()
	case FormatHeatmap:
		return WriteHeatmap(w, res)
	case FormatHistogram:
		return WriteHistogram(w, res, DefaultBins)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteCSV writes a p,q,emv header and one record per cell. Invalid cells
// have an empty emv and the error in a fourth column.
func WriteCSV(w io.Writer, res *sweep.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"p", "q", "emv", "error"}); err != nil {
		return err
	}
	for _, r := range rows(res) {
		emv := ""
		if r.EMV != nil {
			emv = strconv.FormatFloat(*r.EMV, 'f', -1, 64)
		}
		rec := []string{
			strconv.FormatFloat(r.P, 'f', -1, 64),
			strconv.FormatFloat(r.Q, 'f', -1, 64),
			emv,
			r.Error,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable prints the triples followed by a summary of the surface.
func WriteTable(w io.Writer, res *sweep.Result) error {
	var ss strings.Builder
	fmt.Fprintf(&ss, "%-10s%-10s%-16s\n", "p", "q", "EMV")
	for _, c := range res.Cells {
		if !c.Valid() {
			fmt.Fprintf(&ss, "%-10.4f%-10.4f%-16s%v\n", c.P, c.Q, "invalid", c.Err)
			continue
		}
		fmt.Fprintf(&ss, "%-10.4f%-10.4f%-16.2f\n", c.P, c.Q, c.EMV)
	}
	writeSummary(&ss, res)
	_, err := io.WriteString(w, ss.String())
	return err
}

func writeSummary(ss *strings.Builder, res *sweep.Result) {
	sum := res.Summary()
	fmt.Fprintf(ss, "\nCells: %d (invalid: %d)\n", len(res.Cells), len(res.Invalid()))
	if sum.Count == 0 {
		return
	}
	fmt.Fprintf(ss, "EMV mean %.2f, stdev %.2f, range [%.2f, %.2f]\n",
		sum.Mean, sum.Stdev, sum.Min, sum.Max)
	if best, ok := res.Best(); ok {
		fmt.Fprintf(ss, "Best:  p=%.4f q=%.4f EMV=%.2f\n", best.P, best.Q, best.EMV)
	}
	if worst, ok := res.Worst(); ok {
		fmt.Fprintf(ss, "Worst: p=%.4f q=%.4f EMV=%.2f\n", worst.P, worst.Q, worst.EMV)
	}
}

// fraction maps v onto [0,1] within the summary's range. A flat surface
// maps everything to 1.
func fraction(v float64, sum stats.Summary) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if sum.Spread() <= stats.Epsilon {
		return 1
	}
	return (v - sum.Min) / sum.Spread()
}
