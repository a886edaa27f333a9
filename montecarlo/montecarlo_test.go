package montecarlo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wildcat/bayes"
	"github.com/domino14/wildcat/emv"
	"github.com/domino14/wildcat/stats"
)

func newSimmer(t *testing.T, w emv.Weights) *Simmer {
	solver, err := emv.NewSolver(emv.DefaultScenario(), w)
	if err != nil {
		t.Fatal(err)
	}
	return NewSimmer(solver)
}

// within checks the estimate against the analytic value with a margin of
// five standard errors, wide enough that a seeded run never flakes.
func within(est Estimate) bool {
	return math.Abs(est.Mean-est.Analytic) <= 5*est.StdErr
}

func TestSimAgreesWithSolver(t *testing.T) {
	is := is.New(t)
	s := newSimmer(t, emv.DefaultWeights())
	s.SetThreads(1)
	s.SetSeed(42)
	s.SetIterations(200_000)
	is.NoErr(s.Prepare(bayes.Reliability{P: 0.7, Q: 0.7}))

	est, err := s.Simulate(context.Background())
	is.NoErr(err)
	is.Equal(est.Iterations, 200_000)
	is.Equal(s.Iterations(), 200_000)
	is.True(stats.FuzzyEqual(est.Analytic, s.Strategy().Total))
	is.True(within(est))
	is.True(est.HalfWidth > 0)
}

func TestSeededSimIsRepeatable(t *testing.T) {
	is := is.New(t)
	run := func() Estimate {
		s := newSimmer(t, emv.DefaultWeights())
		s.SetThreads(1)
		s.SetSeed(7)
		s.SetIterations(20_000)
		is.NoErr(s.Prepare(bayes.Reliability{P: 0.6, Q: 0.8}))
		est, err := s.Simulate(context.Background())
		is.NoErr(err)
		return est
	}
	a, b := run(), run()
	is.Equal(a.Mean, b.Mean)
	is.Equal(a.Stdev, b.Stdev)
}

func TestMultiThreadedSim(t *testing.T) {
	is := is.New(t)
	s := newSimmer(t, emv.DefaultWeights())
	s.SetThreads(4)
	s.SetCheckInterval(1_000)
	s.SetSeed(3)
	s.SetIterations(100_500)
	is.NoErr(s.Prepare(bayes.Reliability{P: 0.8, Q: 0.55}))
	est, err := s.Simulate(context.Background())
	is.NoErr(err)
	is.Equal(est.Iterations, 100_500)
	is.True(within(est))
}

func TestChanceModeSim(t *testing.T) {
	is := is.New(t)
	w := emv.DefaultWeights()
	w.HireMode = emv.HireChance
	w.Hire = 0.5
	s := newSimmer(t, w)
	s.SetThreads(2)
	s.SetSeed(11)
	is.NoErr(s.Prepare(bayes.Reliability{P: 0.75, Q: 0.6}))
	est, err := s.Simulate(context.Background())
	is.NoErr(err)
	is.True(within(est))
}

func TestStoppingCondition(t *testing.T) {
	is := is.New(t)
	s := newSimmer(t, emv.DefaultWeights())
	s.SetThreads(1)
	s.SetSeed(5)
	s.SetStoppingCondition(Stop95, 0.01)
	is.NoErr(s.Prepare(bayes.Reliability{P: 0.7, Q: 0.7}))
	est, err := s.Simulate(context.Background())
	is.NoErr(err)
	is.True(est.Iterations < IterationsCutoff)
	is.True(stats.Z95*est.StdErr <= 0.01*math.Abs(est.Mean))
}

func TestNotPrepared(t *testing.T) {
	is := is.New(t)
	s := newSimmer(t, emv.DefaultWeights())
	_, err := s.Simulate(context.Background())
	is.True(errors.Is(err, ErrNotPrepared))

	err = s.Prepare(bayes.Reliability{P: 0, Q: 1})
	is.True(errors.Is(err, bayes.ErrDegenerateMarginal))
	_, err = s.Simulate(context.Background())
	is.True(errors.Is(err, ErrNotPrepared))
}

func TestParseStoppingCondition(t *testing.T) {
	is := is.New(t)
	for in, want := range map[string]StoppingCondition{
		"": StopNone, "none": StopNone, "95": Stop95, "99%": Stop99,
	} {
		sc, err := ParseStoppingCondition(in)
		is.NoErr(err)
		is.Equal(sc, want)
	}
	_, err := ParseStoppingCondition("90")
	is.True(err != nil)
}
