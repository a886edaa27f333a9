package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/domino14/wildcat/sweep"
)

var errDegenerate = errors.New("degenerate")

func sampleResult() *sweep.Result {
	g := sweep.Grid{
		Resolution: 2,
		P:          sweep.Range{Lo: 0, Hi: 1},
		Q:          sweep.Range{Lo: 0, Hi: 1},
	}
	return &sweep.Result{
		Grid: g,
		Cells: []sweep.Cell{
			{P: 0, Q: 0, EMV: 100},
			{P: 0, Q: 1, EMV: math.NaN(), Err: errDegenerate},
			{P: 1, Q: 0, EMV: 300},
			{P: 1, Q: 1, EMV: 200},
		},
	}
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)
	f, err := ParseFormat(" JSON ")
	is.NoErr(err)
	is.Equal(f, FormatJSON)
	_, err = ParseFormat("xml")
	is.True(errors.Is(err, ErrUnknownFormat))
}

func TestWriteCSV(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, FormatCSV, sampleResult()))

	recs, err := csv.NewReader(&buf).ReadAll()
	is.NoErr(err)
	is.Equal(len(recs), 5)
	is.Equal(recs[0], []string{"p", "q", "emv", "error"})
	is.Equal(recs[1], []string{"0", "0", "100", ""})
	is.Equal(recs[2], []string{"0", "1", "", "degenerate"})
	is.Equal(recs[3], []string{"1", "0", "300", ""})
}

func TestWriteJSON(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, FormatJSON, sampleResult()))

	var doc Document
	is.NoErr(json.Unmarshal(buf.Bytes(), &doc))
	is.Equal(doc.Grid.Resolution, 2)
	is.Equal(doc.Invalid, 1)
	is.Equal(doc.Summary.Count, 3)
	assert.InDelta(t, 200, doc.Summary.Mean, 1e-9)
	is.Equal(len(doc.Cells), 4)
	is.True(doc.Cells[1].EMV == nil)
	is.Equal(doc.Cells[1].Error, "degenerate")
	is.Equal(*doc.Cells[2].EMV, 300.0)
}

func TestWriteYAML(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, FormatYAML, sampleResult()))

	var doc Document
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &doc))
	is.Equal(doc.Grid.P.Hi, 1.0)
	is.Equal(doc.Summary.Max, 300.0)
	is.True(doc.Cells[1].EMV == nil)
	is.Equal(*doc.Cells[3].EMV, 200.0)
}

func TestWriteTable(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, FormatTable, sampleResult()))
	out := buf.String()
	is.True(strings.Contains(out, "invalid"))
	is.True(strings.Contains(out, "Cells: 4 (invalid: 1)"))
	is.True(strings.Contains(out, "Best:  p=1.0000 q=0.0000 EMV=300.00"))
	is.True(strings.Contains(out, "Worst: p=0.0000 q=0.0000 EMV=100.00"))
}

func TestWriteHeatmap(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, FormatHeatmap, sampleResult()))
	out := buf.String()
	lines := strings.Split(out, "\n")
	// the top row is the highest p
	is.True(strings.HasPrefix(lines[1], " 1.000"))
	is.True(strings.HasPrefix(lines[2], " 0.000"))
	// 300 is the brightest, 100 the darkest
	is.True(strings.Contains(lines[1], getHeatColor(1)))
	is.True(strings.Contains(lines[2], getHeatColor(0)))
	is.True(strings.Contains(lines[2], " x"))
}

func TestHeatColor(t *testing.T) {
	is := is.New(t)
	is.Equal(getHeatColor(0), "\033[48;5;232m")
	is.Equal(getHeatColor(1), "\033[48;5;255m")
}

func TestWriteHistogram(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(WriteHistogram(&buf, sampleResult(), 3))
	is.True(buf.Len() > 0)

	buf.Reset()
	empty := &sweep.Result{Grid: sweep.DefaultGrid()}
	is.NoErr(WriteHistogram(&buf, empty, 3))
	is.Equal(buf.String(), "no valid cells\n")
}

func TestWriteUnknown(t *testing.T) {
	is := is.New(t)
	err := Write(&bytes.Buffer{}, Format("xml"), sampleResult())
	is.True(errors.Is(err, ErrUnknownFormat))
}
