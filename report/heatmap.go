package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/wildcat/sweep"
)

const DefaultBins = 15

const reset = "\033[0m"

// getHeatColor returns an ANSI escape sequence for a given heat level.
func getHeatColor(fraction float64) string {
	// Map the fraction (0 to 1) to grayscale colors (232 to 255 in ANSI 256-color palette)
	// 232 is darkest (black), 255 is lightest (white)
	start := 232
	end := 255
	colorCode := int(float64(start) + fraction*float64(end-start))
	return fmt.Sprintf("\033[48;5;%dm", colorCode) // Background color
}

// WriteHeatmap draws one row per p value (highest p on top, as on a plot)
// and one column per q value; brighter cells carry a larger EMV. Invalid
// cells are shown as "x".
func WriteHeatmap(w io.Writer, res *sweep.Result) error {
	var ss strings.Builder
	sum := res.Summary()
	m := res.Matrix()
	ps := res.Grid.PValues()
	qs := res.Grid.QValues()

	ss.WriteString("p \\ q\n")
	for i := len(m) - 1; i >= 0; i-- {
		fmt.Fprintf(&ss, "%6.3f ", ps[i])
		for j, v := range m[i] {
			if !res.Cells[i*len(qs)+j].Valid() {
				ss.WriteString(reset + " x")
				continue
			}
			fmt.Fprintf(&ss, "%s  %s", getHeatColor(fraction(v, sum)), reset)
		}
		ss.WriteString("\n")
	}
	fmt.Fprintf(&ss, "%6s ", "")
	for j := range qs {
		// label every fifth column to keep the axis readable
		if j%5 == 0 {
			fmt.Fprintf(&ss, "%-10.3f", qs[j])
		}
	}
	ss.WriteString("\n")
	fmt.Fprintf(&ss, "dark = %.2f, light = %.2f\n", sum.Min, sum.Max)
	_, err := io.WriteString(w, ss.String())
	return err
}

// WriteHistogram prints the distribution of EMV values across the valid
// cells.
func WriteHistogram(w io.Writer, res *sweep.Result, bins int) error {
	vals := make([]float64, 0, len(res.Cells))
	for _, c := range res.Valid() {
		vals = append(vals, c.EMV)
	}
	if len(vals) == 0 {
		_, err := io.WriteString(w, "no valid cells\n")
		return err
	}
	hist := histogram.Hist(bins, vals)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
