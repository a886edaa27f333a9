// Package montecarlo plays a solved land-deal strategy many times against
// random oil and random expert predictions, as an independent check on the
// analytic EMV.
package montecarlo

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/wildcat/bayes"
	"github.com/domino14/wildcat/emv"
	"github.com/domino14/wildcat/stats"
)

/*
	One iteration walks the tree once:

	- chance node: buy the land with probability Weights.Buy, otherwise
	  the payoff is 0.
	- decision node: hire the expert or not, as the strategy says (or by
	  chance, in HireChance mode).
	- nature draws oil with probability PriorOil.
	- if hired, the expert predicts oil with probability p when there is
	  oil and 1-q when there is not; the strategy's drill decision for that
	  prediction is taken. Without the expert the well is always drilled.
	- payoff: R-C for a drilled strike, -C otherwise.
*/

var ErrNotPrepared = errors.New("please prepare the simulation first")

const (
	DefaultIterations    = 100_000
	DefaultCheckInterval = 5_000
	// IterationsCutoff caps a sim running under a stopping condition.
	IterationsCutoff = 5_000_000
)

// Estimate is the outcome of a simulation.
type Estimate struct {
	Iterations int     `json:"iterations" yaml:"iterations"`
	Mean       float64 `json:"mean" yaml:"mean"`
	Stdev      float64 `json:"stdev" yaml:"stdev"`
	StdErr     float64 `json:"stderr" yaml:"stderr"`
	// HalfWidth is the 99% confidence half-width around Mean.
	HalfWidth float64 `json:"half_width_99" yaml:"half_width_99"`
	// Analytic is the solver's EMV for the same strategy.
	Analytic float64       `json:"analytic" yaml:"analytic"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Agrees reports whether the analytic EMV lies inside the 99% interval.
func (e Estimate) Agrees() bool {
	return e.Analytic >= e.Mean-e.HalfWidth && e.Analytic <= e.Mean+e.HalfWidth
}

func (e Estimate) String() string {
	return fmt.Sprintf("%.2f±%.2f (analytic %.2f, %d iterations)",
		e.Mean, e.HalfWidth, e.Analytic, e.Iterations)
}

// Simmer runs the simulation.
type Simmer struct {
	solver   *emv.Solver
	strategy emv.Breakdown
	prepared bool

	threads           int
	iterations        int
	checkInterval     int
	stoppingCondition StoppingCondition
	tolerance         float64
	seed              []byte

	iterationCount atomic.Uint64
	mu             sync.Mutex
	payoffs        stats.Statistic
}

func NewSimmer(solver *emv.Solver) *Simmer {
	return &Simmer{
		solver:        solver,
		threads:       max(1, runtime.NumCPU()-1),
		iterations:    DefaultIterations,
		checkInterval: DefaultCheckInterval,
		tolerance:     DefaultTolerance,
	}
}

func (s *Simmer) SetThreads(threads int) {
	if threads >= 1 {
		s.threads = threads
	}
}

func (s *Simmer) Threads() int {
	return s.threads
}

// SetIterations fixes the number of iterations when no stopping condition
// is set.
func (s *Simmer) SetIterations(n int) {
	if n >= 1 {
		s.iterations = n
	}
}

// SetStoppingCondition makes the sim run until the confidence interval is
// narrower than tolerance times the mean payoff.
func (s *Simmer) SetStoppingCondition(sc StoppingCondition, tolerance float64) {
	s.stoppingCondition = sc
	if tolerance > 0 {
		s.tolerance = tolerance
	}
}

func (s *Simmer) SetCheckInterval(n int) {
	if n >= 1 {
		s.checkInterval = n
	}
}

// SetSeed makes the random streams reproducible. Each thread derives its
// own stream from the seed, so results are only repeatable for a fixed
// thread count.
func (s *Simmer) SetSeed(seed uint64) {
	s.seed = make([]byte, 32)
	binary.LittleEndian.PutUint64(s.seed, seed)
}

// Prepare solves the tree for r; the resulting decisions are what the
// simulation plays.
func (s *Simmer) Prepare(r bayes.Reliability) error {
	b, err := s.solver.Solve(r)
	if err != nil {
		return err
	}
	s.strategy = b
	s.prepared = true
	return nil
}

func (s *Simmer) Strategy() emv.Breakdown {
	return s.strategy
}

func (s *Simmer) Iterations() int {
	return int(s.iterationCount.Load())
}

func (s *Simmer) rng(thread int) *frand.RNG {
	if s.seed == nil {
		e := frand.Entropy256()
		return frand.NewCustom(e[:], 1024, 12)
	}
	seed := make([]byte, 32)
	copy(seed, s.seed)
	binary.LittleEndian.PutUint64(seed[8:], uint64(thread)+1)
	return frand.NewCustom(seed, 1024, 12)
}

// playOnce walks the tree a single time and returns the payoff.
func (s *Simmer) playOnce(rng *frand.RNG) float64 {
	sc := s.solver.Scenario()
	w := s.solver.Weights()
	b := s.strategy

	if rng.Float64() >= w.Buy {
		return 0
	}
	hire := b.HireExpert
	if w.HireMode == emv.HireChance {
		hire = rng.Float64() < w.Hire
	}
	oil := rng.Float64() < sc.PriorOil

	drill := true
	if hire {
		var pred bayes.Prediction
		if oil {
			pred = bayes.PredictNoOil
			if rng.Float64() < b.Reliability.P {
				pred = bayes.PredictOil
			}
		} else {
			pred = bayes.PredictOil
			if rng.Float64() < b.Reliability.Q {
				pred = bayes.PredictNoOil
			}
		}
		drill = b.Drill(pred).Drill
	}
	if drill && oil {
		return sc.NetProfit()
	}
	return -sc.LandCost
}

// Simulate plays the prepared strategy until the iteration budget is spent,
// the stopping condition is met, or ctx is done. It is a blocking function.
func (s *Simmer) Simulate(ctx context.Context) (Estimate, error) {
	logger := zerolog.Ctx(ctx)
	if !s.prepared {
		return Estimate{}, ErrNotPrepared
	}
	s.iterationCount.Store(0)
	s.payoffs = stats.Statistic{}

	budget := uint64(s.iterations)
	if s.stoppingCondition != StopNone {
		budget = IterationsCutoff
	}
	batch := uint64(s.checkInterval)

	logger.Debug().Int("threads", s.threads).Uint64("budget", budget).
		Str("stopping-condition", s.stoppingCondition.String()).Msg("sim-starting")
	tstart := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g := errgroup.Group{}

	for t := 0; t < s.threads; t++ {
		t := t
		g.Go(func() error {
			rng := s.rng(t)
			for {
				if ctx.Err() != nil {
					return nil
				}
				// claim a batch of iterations
				end := s.iterationCount.Add(batch)
				start := end - batch
				if start >= budget {
					return nil
				}
				end = min(end, budget)
				local := stats.Statistic{}
				for i := start; i < end; i++ {
					local.Push(s.playOnce(rng))
				}
				s.mu.Lock()
				s.payoffs.Merge(&local)
				stop := s.stoppingCondition != StopNone &&
					shouldStop(&s.payoffs, s.stoppingCondition, s.tolerance)
				s.mu.Unlock()
				if stop {
					logger.Debug().Int("thread", t).Msg("reached-stopping-condition")
					cancel()
					return nil
				}
			}
		})
	}
	// Workers never fail; a canceled ctx still leaves a usable estimate.
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	est := Estimate{
		Iterations: s.payoffs.Iterations(),
		Mean:       s.payoffs.Mean(),
		Stdev:      s.payoffs.Stdev(),
		StdErr:     s.payoffs.StandardError(),
		HalfWidth:  stats.Z99 * s.payoffs.StandardError(),
		Analytic:   s.strategy.Total,
		Elapsed:    time.Since(tstart),
	}
	s.iterationCount.Store(uint64(est.Iterations))
	logger.Info().Int("iterations", est.Iterations).Float64("mean", est.Mean).
		Float64("analytic", est.Analytic).Dur("elapsed", est.Elapsed).Msg("sim-ended")
	return est, nil
}
