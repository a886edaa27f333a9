package sweep

import (
	"math"

	"github.com/samber/lo"

	"github.com/domino14/wildcat/stats"
)

// Cell is one evaluated point of the grid. EMV is NaN when Err is set.
type Cell struct {
	P   float64 `json:"p" yaml:"p"`
	Q   float64 `json:"q" yaml:"q"`
	EMV float64 `json:"emv" yaml:"emv"`
	Err error   `json:"-" yaml:"-"`
}

func (c Cell) Valid() bool {
	return c.Err == nil
}

// Result is a completed sweep. Cells are in grid order, p-major.
type Result struct {
	Grid  Grid   `json:"grid" yaml:"grid"`
	Cells []Cell `json:"cells" yaml:"cells"`
}

func (r *Result) Valid() []Cell {
	return lo.Filter(r.Cells, func(c Cell, _ int) bool {
		return c.Valid()
	})
}

func (r *Result) Invalid() []Cell {
	return lo.Reject(r.Cells, func(c Cell, _ int) bool {
		return c.Valid()
	})
}

// Best returns the valid cell with the highest EMV. Ties keep the earliest
// cell in grid order. ok is false if no cell is valid.
func (r *Result) Best() (Cell, bool) {
	valid := r.Valid()
	if len(valid) == 0 {
		return Cell{}, false
	}
	return lo.MaxBy(valid, func(a, b Cell) bool {
		return a.EMV > b.EMV
	}), true
}

func (r *Result) Worst() (Cell, bool) {
	valid := r.Valid()
	if len(valid) == 0 {
		return Cell{}, false
	}
	return lo.MinBy(valid, func(a, b Cell) bool {
		return a.EMV < b.EMV
	}), true
}

// Summary describes the EMV surface over the valid cells.
func (r *Result) Summary() stats.Summary {
	st := &stats.Statistic{}
	for _, c := range r.Valid() {
		st.Push(c.EMV)
	}
	return st.Summary()
}

// Triples returns (p, q, emv) for every cell, NaN marking invalid ones.
func (r *Result) Triples() [][3]float64 {
	return lo.Map(r.Cells, func(c Cell, _ int) [3]float64 {
		emv := c.EMV
		if !c.Valid() {
			emv = math.NaN()
		}
		return [3]float64{c.P, c.Q, emv}
	})
}

// Matrix lays the EMVs out as rows of constant p and columns of constant q.
func (r *Result) Matrix() [][]float64 {
	n := r.Grid.Resolution
	m := make([][]float64, n)
	for i := range m {
		m[i] = lo.Map(r.Cells[i*n:(i+1)*n], func(c Cell, _ int) float64 {
			return c.EMV
		})
	}
	return m
}
