// Package emv rolls the land / expert / drill decision tree back to a single
// expected monetary value.
package emv

import (
	"fmt"

	"github.com/domino14/wildcat/bayes"
)

// DrillDecision is the value of the drill node reached after one of the
// expert's predictions.
type DrillDecision struct {
	Prediction bayes.Prediction `json:"prediction" yaml:"prediction"`
	// Probability is the marginal probability of reaching this node.
	Probability float64 `json:"probability" yaml:"probability"`
	// OilProbability is the posterior probability of oil at this node.
	OilProbability float64 `json:"oil_probability" yaml:"oil_probability"`
	// DrillEMV is the expected value of drilling; Floor is the value of
	// walking away with the land cost already spent.
	DrillEMV float64 `json:"drill_emv" yaml:"drill_emv"`
	Floor    float64 `json:"floor" yaml:"floor"`
	EMV      float64 `json:"emv" yaml:"emv"`
	Drill    bool    `json:"drill" yaml:"drill"`
}

// Breakdown is the value of every decision node for one expert.
type Breakdown struct {
	Reliability bayes.Reliability `json:"reliability" yaml:"reliability"`
	Posterior   bayes.Posterior   `json:"posterior" yaml:"posterior"`

	OnPredictOil   DrillDecision `json:"on_predict_oil" yaml:"on_predict_oil"`
	OnPredictNoOil DrillDecision `json:"on_predict_no_oil" yaml:"on_predict_no_oil"`

	Hire    float64 `json:"emv_hire" yaml:"emv_hire"`
	NotHire float64 `json:"emv_not_hire" yaml:"emv_not_hire"`
	Buy     float64 `json:"emv_buy" yaml:"emv_buy"`
	Total   float64 `json:"emv_total" yaml:"emv_total"`
	// HireExpert is the branch taken at the buy node. In chance mode it
	// records which branch carries the larger EMV.
	HireExpert bool `json:"hire_expert" yaml:"hire_expert"`
}

// SampleInformation is what the expert's prediction is worth over drilling on
// the prior alone. It can be negative only by floating point noise, since
// the no-hire branch never has a better option than the drill floor.
func (b Breakdown) SampleInformation() float64 {
	return b.Hire - b.NotHire
}

// Drill returns the drill node reached after pred.
func (b Breakdown) Drill(pred bayes.Prediction) DrillDecision {
	if pred == bayes.PredictOil {
		return b.OnPredictOil
	}
	return b.OnPredictNoOil
}

func (b Breakdown) String() string {
	return fmt.Sprintf("<EMV %s total=%.2f buy=%.2f hire=%.2f nothire=%.2f>",
		b.Reliability, b.Total, b.Buy, b.Hire, b.NotHire)
}

// Solver evaluates the tree for a fixed scenario. It holds no mutable state
// and is safe for concurrent use.
type Solver struct {
	scenario Scenario
	weights  Weights
}

func NewSolver(s Scenario, w Weights) (*Solver, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Solver{scenario: s, weights: w}, nil
}

func (s *Solver) Scenario() Scenario {
	return s.scenario
}

func (s *Solver) Weights() Weights {
	return s.weights
}

// NotHire is the EMV of buying and drilling on the prior. There is no
// walk-away floor on this branch: without a prediction the drill is taken.
func (s *Solver) NotHire() float64 {
	po := s.scenario.PriorOil
	return po*s.scenario.NetProfit() + (1-po)*(-s.scenario.LandCost)
}

// PerfectInformation is the EMV of buying only when oil is known to be
// present, i.e. a clairvoyant consulted before the purchase.
func (s *Solver) PerfectInformation() float64 {
	return s.scenario.PriorOil * s.scenario.NetProfit()
}

func (s *Solver) drill(pred bayes.Prediction, po bayes.Posterior) DrillDecision {
	post := po.OilGiven(pred)
	d := DrillDecision{
		Prediction:     pred,
		Probability:    po.Marginal(pred),
		OilProbability: post,
		DrillEMV:       post*s.scenario.NetProfit() + (1-post)*(-s.scenario.LandCost),
		Floor:          -s.scenario.LandCost,
	}
	d.Drill = d.DrillEMV >= d.Floor
	if d.Drill {
		d.EMV = d.DrillEMV
	} else {
		d.EMV = d.Floor
	}
	return d
}

// Solve evaluates every node of the tree for the expert r.
func (s *Solver) Solve(r bayes.Reliability) (Breakdown, error) {
	po, err := bayes.Update(s.scenario.PriorOil, r)
	if err != nil {
		return Breakdown{}, fmt.Errorf("solving %s: %w", r, err)
	}
	b := Breakdown{
		Reliability:    r,
		Posterior:      po,
		OnPredictOil:   s.drill(bayes.PredictOil, po),
		OnPredictNoOil: s.drill(bayes.PredictNoOil, po),
		NotHire:        s.NotHire(),
	}
	b.Hire = po.PredictOil*b.OnPredictOil.EMV + po.PredictNoOil*b.OnPredictNoOil.EMV
	b.HireExpert = b.Hire >= b.NotHire

	switch s.weights.HireMode {
	case HireChance:
		b.Buy = s.weights.Hire*b.Hire + (1-s.weights.Hire)*b.NotHire
	default:
		if b.HireExpert {
			b.Buy = b.Hire
		} else {
			b.Buy = b.NotHire
		}
	}
	// Doing nothing pays zero, so that branch adds nothing to the total.
	b.Total = s.weights.Buy * b.Buy
	return b, nil
}

// Total is Solve reduced to the top-level EMV.
func (s *Solver) Total(r bayes.Reliability) (float64, error) {
	b, err := s.Solve(r)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}
