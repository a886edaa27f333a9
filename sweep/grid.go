package sweep

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/domino14/wildcat/bayes"
)

var ErrInvalidGrid = errors.New("invalid grid")

const (
	DefaultResolution = 20
	DefaultLo         = 0.5
	DefaultHi         = 0.8
)

// Range is a closed interval of expert rates.
type Range struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Lo, r.Hi)
}

// Grid is the Cartesian product of Resolution points on P and on Q.
type Grid struct {
	Resolution int   `json:"resolution" yaml:"resolution"`
	P          Range `json:"p_range" yaml:"p_range"`
	Q          Range `json:"q_range" yaml:"q_range"`
}

func DefaultGrid() Grid {
	return Grid{
		Resolution: DefaultResolution,
		P:          Range{Lo: DefaultLo, Hi: DefaultHi},
		Q:          Range{Lo: DefaultLo, Hi: DefaultHi},
	}
}

func (g Grid) Validate() error {
	if g.Resolution < 1 {
		return fmt.Errorf("%w: resolution %d must be at least 1", ErrInvalidGrid, g.Resolution)
	}
	for _, ax := range []struct {
		name string
		r    Range
	}{{"p", g.P}, {"q", g.Q}} {
		if err := bayes.CheckProbability(ax.name+"_lo", ax.r.Lo); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidGrid, err)
		}
		if err := bayes.CheckProbability(ax.name+"_hi", ax.r.Hi); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidGrid, err)
		}
		if ax.r.Lo > ax.r.Hi {
			return fmt.Errorf("%w: %s range %s is reversed", ErrInvalidGrid, ax.name, ax.r)
		}
	}
	return nil
}

// Size is the number of cells in the grid.
func (g Grid) Size() int {
	return g.Resolution * g.Resolution
}

func axis(r Range, n int) []float64 {
	if n == 1 {
		return []float64{r.Lo}
	}
	return floats.Span(make([]float64, n), r.Lo, r.Hi)
}

// PValues returns the evenly spaced points along the P axis, endpoints
// included.
func (g Grid) PValues() []float64 {
	return axis(g.P, g.Resolution)
}

func (g Grid) QValues() []float64 {
	return axis(g.Q, g.Resolution)
}

// Reliabilities lists every cell, p-major, q-minor.
func (g Grid) Reliabilities() []bayes.Reliability {
	ps, qs := g.PValues(), g.QValues()
	out := make([]bayes.Reliability, 0, len(ps)*len(qs))
	for _, p := range ps {
		for _, q := range qs {
			out = append(out, bayes.Reliability{P: p, Q: q})
		}
	}
	return out
}
