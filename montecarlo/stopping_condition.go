package montecarlo

import (
	"fmt"
	"math"
	"strings"

	"github.com/domino14/wildcat/stats"
)

type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop95
	Stop99
)

// DefaultTolerance is the relative half-width at which an automatic
// stopping condition ends the sim.
const DefaultTolerance = 0.005

// MinIterationsBeforeStop avoids stopping on a lucky small sample.
const MinIterationsBeforeStop = 1_000

func (sc StoppingCondition) String() string {
	switch sc {
	case Stop95:
		return "95"
	case Stop99:
		return "99"
	}
	return "none"
}

func ParseStoppingCondition(s string) (StoppingCondition, error) {
	switch strings.TrimSuffix(strings.TrimSpace(s), "%") {
	case "", "none", "0":
		return StopNone, nil
	case "95":
		return Stop95, nil
	case "99":
		return Stop99, nil
	}
	return StopNone, fmt.Errorf("unknown stopping condition %q", s)
}

// shouldStop is true once the confidence half-width for the mean payoff is
// within tolerance of the mean's magnitude.
func shouldStop(st *stats.Statistic, sc StoppingCondition, tolerance float64) bool {
	if st.Iterations() < MinIterationsBeforeStop {
		return false
	}
	var z float64
	switch sc {
	case Stop95:
		z = stats.Z95
	case Stop99:
		z = stats.Z99
	default:
		return false
	}
	halfWidth := z * st.StandardError()
	// A mean at zero would never satisfy a relative bound.
	scale := math.Max(math.Abs(st.Mean()), 1)
	return halfWidth <= tolerance*scale
}
