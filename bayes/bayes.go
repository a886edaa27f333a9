// Package bayes updates the probability of oil after hearing an imperfect
// expert's prediction.
package bayes

import "fmt"

// Reliability describes the expert. P is the true-positive rate,
// P(predicts oil | oil). Q is the true-negative rate,
// P(predicts no oil | no oil).
type Reliability struct {
	P float64 `json:"p" yaml:"p"`
	Q float64 `json:"q" yaml:"q"`
}

func (r Reliability) String() string {
	return fmt.Sprintf("p=%.4f q=%.4f", r.P, r.Q)
}

// Validate checks that both rates are probabilities.
func (r Reliability) Validate() error {
	if err := CheckProbability("p", r.P); err != nil {
		return err
	}
	return CheckProbability("q", r.Q)
}

// Informative is false when the expert's prediction is independent of the
// true state, i.e. p + q == 1. Such an expert leaves every posterior at the
// prior.
func (r Reliability) Informative() bool {
	return r.P+r.Q != 1
}

// Posterior holds the marginal probability of each prediction and the
// probability of oil conditioned on it.
type Posterior struct {
	PredictOil           float64 `json:"p_predict_oil" yaml:"p_predict_oil"`
	PredictNoOil         float64 `json:"p_predict_no_oil" yaml:"p_predict_no_oil"`
	OilGivenPredictOil   float64 `json:"p_oil_given_predict_oil" yaml:"p_oil_given_predict_oil"`
	OilGivenPredictNoOil float64 `json:"p_oil_given_predict_no_oil" yaml:"p_oil_given_predict_no_oil"`
}

// Marginal returns the unconditional probability of pred.
func (po Posterior) Marginal(pred Prediction) float64 {
	if pred == PredictOil {
		return po.PredictOil
	}
	return po.PredictNoOil
}

// OilGiven returns P(oil | pred).
func (po Posterior) OilGiven(pred Prediction) float64 {
	if pred == PredictOil {
		return po.OilGivenPredictOil
	}
	return po.OilGivenPredictNoOil
}

// Lift is how far a "predict oil" moves the belief above a "predict no oil".
// It is zero for an uninformative expert and negative for one that is worse
// than a coin flip in the useful direction.
func (po Posterior) Lift() float64 {
	return po.OilGivenPredictOil - po.OilGivenPredictNoOil
}

// Update applies Bayes' rule for the given prior probability of oil.
// A marginal that comes out exactly zero yields a *MarginalError instead of
// a NaN or Inf posterior.
func Update(prior float64, r Reliability) (Posterior, error) {
	if err := CheckProbability("prior", prior); err != nil {
		return Posterior{}, err
	}
	if err := r.Validate(); err != nil {
		return Posterior{}, err
	}
	noOil := 1 - prior

	po := Posterior{
		PredictOil:   r.P*prior + (1-r.Q)*noOil,
		PredictNoOil: (1-r.P)*prior + r.Q*noOil,
	}
	if po.PredictOil == 0 {
		return Posterior{}, &MarginalError{Prediction: PredictOil, Prior: prior, Reliability: r}
	}
	if po.PredictNoOil == 0 {
		return Posterior{}, &MarginalError{Prediction: PredictNoOil, Prior: prior, Reliability: r}
	}
	po.OilGivenPredictOil = r.P * prior / po.PredictOil
	po.OilGivenPredictNoOil = (1 - r.P) * prior / po.PredictNoOil
	return po, nil
}
