package emv

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/domino14/wildcat/bayes"
)

var ErrInvalidWeights = errors.New("invalid scenario weights")

// Scenario holds the fixed economics of the land deal.
type Scenario struct {
	// PriorOil is the probability that the land holds oil before any
	// expert is consulted.
	PriorOil float64 `json:"prior_oil" yaml:"prior_oil"`
	// LandCost is paid on purchase whether or not anything is drilled.
	LandCost float64 `json:"land_cost" yaml:"land_cost"`
	// OilPayoff is the revenue when drilling strikes oil.
	OilPayoff float64 `json:"oil_payoff" yaml:"oil_payoff"`
}

// DefaultScenario is the land deal from the original case study.
func DefaultScenario() Scenario {
	return Scenario{
		PriorOil:  0.7,
		LandCost:  180_000,
		OilPayoff: 1_800_000,
	}
}

// NetProfit is the gain when the land is bought and oil is found.
func (s Scenario) NetProfit() float64 {
	return s.OilPayoff - s.LandCost
}

func (s Scenario) Validate() error {
	if err := bayes.CheckProbability("prior_oil", s.PriorOil); err != nil {
		return err
	}
	if !(s.LandCost > 0) || math.IsInf(s.LandCost, 0) {
		return &bayes.ParameterError{Name: "land_cost", Value: s.LandCost, Want: "> 0"}
	}
	if !(s.OilPayoff > 0) || math.IsInf(s.OilPayoff, 0) {
		return &bayes.ParameterError{Name: "oil_payoff", Value: s.OilPayoff, Want: "> 0"}
	}
	return nil
}

// HireMode selects how the buy node weighs hiring the expert against
// drilling on the prior alone.
type HireMode int

const (
	// HireOptimal takes whichever of hire / don't hire has the larger EMV.
	HireOptimal HireMode = iota
	// HireChance treats hiring as a chance node with probability Weights.Hire.
	HireChance
)

func (m HireMode) String() string {
	switch m {
	case HireOptimal:
		return "optimal"
	case HireChance:
		return "chance"
	}
	return fmt.Sprintf("hiremode(%d)", int(m))
}

// ParseHireMode is the inverse of HireMode.String.
func ParseHireMode(s string) (HireMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "optimal", "":
		return HireOptimal, nil
	case "chance":
		return HireChance, nil
	}
	return 0, fmt.Errorf("%w: unknown hire mode %q", ErrInvalidWeights, s)
}

// Weights are the branch probabilities of the top of the tree.
type Weights struct {
	// Buy is the probability that the land is bought at all.
	Buy float64 `json:"buy" yaml:"buy"`
	// DoNothing is the probability of walking away, which pays nothing.
	DoNothing float64  `json:"do_nothing" yaml:"do_nothing"`
	HireMode  HireMode `json:"hire_mode" yaml:"hire_mode"`
	// Hire is only consulted in HireChance mode.
	Hire float64 `json:"hire" yaml:"hire"`
}

func DefaultWeights() Weights {
	return Weights{
		Buy:       0.6,
		DoNothing: 0.4,
		HireMode:  HireOptimal,
		Hire:      0.5,
	}
}

const weightTolerance = 1e-9

func (w Weights) Validate() error {
	if err := bayes.CheckProbability("buy_weight", w.Buy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	if err := bayes.CheckProbability("do_nothing_weight", w.DoNothing); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	if math.Abs(w.Buy+w.DoNothing-1) > weightTolerance {
		return fmt.Errorf("%w: buy (%v) and do-nothing (%v) must sum to 1",
			ErrInvalidWeights, w.Buy, w.DoNothing)
	}
	switch w.HireMode {
	case HireOptimal:
	case HireChance:
		if err := bayes.CheckProbability("hire_weight", w.Hire); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
		}
	default:
		return fmt.Errorf("%w: unknown hire mode %v", ErrInvalidWeights, w.HireMode)
	}
	return nil
}

func (m HireMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *HireMode) UnmarshalText(b []byte) error {
	parsed, err := ParseHireMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
