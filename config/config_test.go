package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wildcat/bayes"
	"github.com/domino14/wildcat/emv"
	"github.com/domino14/wildcat/sweep"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()

	sc, err := cfg.Scenario()
	is.NoErr(err)
	is.Equal(sc, emv.DefaultScenario())

	w, err := cfg.Weights()
	is.NoErr(err)
	is.Equal(w, emv.DefaultWeights())

	g, err := cfg.Grid()
	is.NoErr(err)
	is.Equal(g, sweep.DefaultGrid())

	p, err := cfg.ErrorPolicy()
	is.NoErr(err)
	is.Equal(p, sweep.SkipInvalid)
	is.Equal(cfg.GetBool(ConfigDebug), false)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{
		"--prior-oil", "0.5",
		"--grid-resolution", "5",
		"--hire-mode", "chance",
		"--on-error", "abort",
		"--debug",
	})
	is.NoErr(err)

	sc, err := cfg.Scenario()
	is.NoErr(err)
	is.Equal(sc.PriorOil, 0.5)
	is.Equal(sc.LandCost, emv.DefaultScenario().LandCost)

	w, err := cfg.Weights()
	is.NoErr(err)
	is.Equal(w.HireMode, emv.HireChance)

	g, err := cfg.Grid()
	is.NoErr(err)
	is.Equal(g.Resolution, 5)

	p, err := cfg.ErrorPolicy()
	is.NoErr(err)
	is.Equal(p, sweep.Abort)
	is.True(cfg.GetBool(ConfigDebug))
	_, ok := cfg.SanitizedSettings()[ConfigGridResolution]
	is.True(ok)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("WILDCAT_LAND_COST", "200000")
	t.Setenv("WILDCAT_P_MAX", "0.9")

	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	sc, err := cfg.Scenario()
	is.NoErr(err)
	is.Equal(sc.LandCost, 200000.0)
	g, err := cfg.Grid()
	is.NoErr(err)
	is.Equal(g.P.Hi, 0.9)

	// flags beat the environment
	is.NoErr(cfg.Load([]string{"--land-cost", "150000"}))
	sc, err = cfg.Scenario()
	is.NoErr(err)
	is.Equal(sc.LandCost, 150000.0)
}

func TestLoadFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "wildcat.yaml")
	contents := "oil-payoff: 2000000\nbuy-weight: 1\ndo-nothing-weight: 0\nq-min: 0.6\n"
	is.NoErr(os.WriteFile(path, []byte(contents), 0o644))

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--config", path}))

	sc, err := cfg.Scenario()
	is.NoErr(err)
	is.Equal(sc.OilPayoff, 2000000.0)
	w, err := cfg.Weights()
	is.NoErr(err)
	is.Equal(w.Buy, 1.0)
	g, err := cfg.Grid()
	is.NoErr(err)
	is.Equal(g.Q.Lo, 0.6)

	_, err = cfg.Solver()
	is.NoErr(err)
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	is.True(err != nil)
}

func TestInvalidValues(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--prior-oil", "1.5"}))
	_, err := cfg.Scenario()
	is.True(errors.Is(err, bayes.ErrInvalidParameter))
	_, err = cfg.Solver()
	is.True(err != nil)

	is.NoErr(cfg.Load([]string{"--buy-weight", "0.7"}))
	_, err = cfg.Weights()
	is.True(errors.Is(err, emv.ErrInvalidWeights))

	is.NoErr(cfg.Load([]string{"--p-min", "0.9", "--p-max", "0.1"}))
	_, err = cfg.Grid()
	is.True(errors.Is(err, sweep.ErrInvalidGrid))

	is.NoErr(cfg.Load([]string{"--hire-mode", "sometimes"}))
	_, err = cfg.Weights()
	is.True(err != nil)
}
