package bayes

import (
	"errors"
	"fmt"
)

var ErrInvalidParameter = errors.New("invalid parameter")
var ErrDegenerateMarginal = errors.New("degenerate prediction marginal")

// ParameterError reports a probability or payoff that falls outside the
// domain the computation requires.
type ParameterError struct {
	Name  string
	Value float64
	// Want describes the accepted domain, e.g. "[0,1]" or "> 0".
	Want string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s = %v, want %s", ErrInvalidParameter, e.Name, e.Value, e.Want)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Prediction is one of the two things the expert can say.
type Prediction int

const (
	PredictOil Prediction = iota
	PredictNoOil
)

func (p Prediction) String() string {
	switch p {
	case PredictOil:
		return "predict-oil"
	case PredictNoOil:
		return "predict-no-oil"
	}
	return fmt.Sprintf("prediction(%d)", int(p))
}

// MarginalError is returned when the unconditional probability of a
// prediction is exactly zero, leaving the posterior for that branch
// undefined.
type MarginalError struct {
	Prediction Prediction
	Prior      float64
	Reliability
}

func (e *MarginalError) Error() string {
	return fmt.Sprintf("%v: P(%s) = 0 (prior=%v p=%v q=%v)",
		ErrDegenerateMarginal, e.Prediction, e.Prior, e.P, e.Q)
}

func (e *MarginalError) Is(target error) bool {
	return target == ErrDegenerateMarginal
}

// CheckProbability returns a *ParameterError if v is not a probability.
func CheckProbability(name string, v float64) error {
	// NaN fails both comparisons, so test for the accepted range instead.
	if !(v >= 0 && v <= 1) {
		return &ParameterError{Name: name, Value: v, Want: "[0,1]"}
	}
	return nil
}

func (p Prediction) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
