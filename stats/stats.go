package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean / variance / range accumulator.
type Statistic struct {
	totalIterations int
	last            float64
	min             float64
	max             float64

	// For Welford's algorithm:
	oldM float64
	newM float64
	oldS float64
	newS float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.totalIterations++
	if s.totalIterations == 1 {
		s.oldM = val
		s.newM = val
		s.oldS = 0
		s.min = val
		s.max = val
		return
	}
	s.newM = s.oldM + (val-s.oldM)/float64(s.totalIterations)
	s.newS = s.oldS + (val-s.oldM)*(val-s.newM)
	s.oldM = s.newM
	s.oldS = s.newS
	s.min = math.Min(s.min, val)
	s.max = math.Max(s.max, val)
}

// Merge folds o into s as if every value pushed to o had been pushed to s.
// It uses Chan et al.'s parallel update so per-thread accumulators can be
// combined after the workers finish.
func (s *Statistic) Merge(o *Statistic) {
	if o.totalIterations == 0 {
		return
	}
	if s.totalIterations == 0 {
		*s = *o
		return
	}
	n1, n2 := float64(s.totalIterations), float64(o.totalIterations)
	n := n1 + n2
	delta := o.newM - s.newM
	mean := s.newM + delta*n2/n
	m2 := s.newS + o.newS + delta*delta*n1*n2/n

	s.totalIterations += o.totalIterations
	s.oldM, s.newM = mean, mean
	s.oldS, s.newS = m2, m2
	s.min = math.Min(s.min, o.min)
	s.max = math.Max(s.max, o.max)
	s.last = o.last
}

func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.newM
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.newS / float64(s.totalIterations-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

// Min and Max return 0 when nothing has been pushed.
func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

// StandardError returns the standard error of the statistic.
func (s *Statistic) StandardError() float64 {
	if s.totalIterations == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.totalIterations))
}

func (s *Statistic) Iterations() int {
	return s.totalIterations
}

// Summary is a frozen snapshot of a Statistic, suitable for reports.
type Summary struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Stdev float64 `json:"stdev" yaml:"stdev"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

func (s *Statistic) Summary() Summary {
	return Summary{
		Count: s.totalIterations,
		Mean:  s.Mean(),
		Stdev: s.Stdev(),
		Min:   s.min,
		Max:   s.max,
	}
}

// Spread is Max - Min.
func (s Summary) Spread() float64 {
	return s.Max - s.Min
}
