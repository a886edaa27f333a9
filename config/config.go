package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/wildcat/emv"
	"github.com/domino14/wildcat/sweep"
)

type Config struct {
	sync.Mutex
	viper.Viper
}

const (
	ConfigPriorOil        = "prior-oil"
	ConfigLandCost        = "land-cost"
	ConfigOilPayoff       = "oil-payoff"
	ConfigBuyWeight       = "buy-weight"
	ConfigDoNothingWeight = "do-nothing-weight"
	ConfigHireMode        = "hire-mode"
	ConfigHireWeight      = "hire-weight"
	ConfigGridResolution  = "grid-resolution"
	ConfigPMin            = "p-min"
	ConfigPMax            = "p-max"
	ConfigQMin            = "q-min"
	ConfigQMax            = "q-max"
	ConfigThreads         = "threads"
	ConfigOnError         = "on-error"
	ConfigFormat          = "format"
	ConfigDebug           = "debug"
	ConfigFile            = "config"
)

// DefaultConfig returns a config holding every default and nothing else.
// Tests use it so they don't depend on the environment.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	sc := emv.DefaultScenario()
	w := emv.DefaultWeights()
	g := sweep.DefaultGrid()

	c.SetDefault(ConfigPriorOil, sc.PriorOil)
	c.SetDefault(ConfigLandCost, sc.LandCost)
	c.SetDefault(ConfigOilPayoff, sc.OilPayoff)
	c.SetDefault(ConfigBuyWeight, w.Buy)
	c.SetDefault(ConfigDoNothingWeight, w.DoNothing)
	c.SetDefault(ConfigHireMode, w.HireMode.String())
	c.SetDefault(ConfigHireWeight, w.Hire)
	c.SetDefault(ConfigGridResolution, g.Resolution)
	c.SetDefault(ConfigPMin, g.P.Lo)
	c.SetDefault(ConfigPMax, g.P.Hi)
	c.SetDefault(ConfigQMin, g.Q.Lo)
	c.SetDefault(ConfigQMax, g.Q.Hi)
	c.SetDefault(ConfigThreads, 0)
	c.SetDefault(ConfigOnError, sweep.SkipInvalid.String())
	c.SetDefault(ConfigFormat, "table")
	c.SetDefault(ConfigDebug, false)
}

// Flags returns a flag set carrying every configuration key. Callers can
// merge it into their own command line.
func Flags() *pflag.FlagSet {
	sc := emv.DefaultScenario()
	w := emv.DefaultWeights()
	g := sweep.DefaultGrid()

	fs := pflag.NewFlagSet("wildcat", pflag.ContinueOnError)
	fs.Float64(ConfigPriorOil, sc.PriorOil, "prior probability that the land has oil")
	fs.Float64(ConfigLandCost, sc.LandCost, "cost of buying the land")
	fs.Float64(ConfigOilPayoff, sc.OilPayoff, "gross payoff if oil is found")
	fs.Float64(ConfigBuyWeight, w.Buy, "weight of the buy branch at the root")
	fs.Float64(ConfigDoNothingWeight, w.DoNothing, "weight of the do-nothing branch at the root")
	fs.String(ConfigHireMode, w.HireMode.String(), "how the expert choice is made: optimal or chance")
	fs.Float64(ConfigHireWeight, w.Hire, "probability of hiring the expert in chance mode")
	fs.Int(ConfigGridResolution, g.Resolution, "points per axis of the sweep grid")
	fs.Float64(ConfigPMin, g.P.Lo, "lowest expert hit rate on oil")
	fs.Float64(ConfigPMax, g.P.Hi, "highest expert hit rate on oil")
	fs.Float64(ConfigQMin, g.Q.Lo, "lowest expert hit rate on dry land")
	fs.Float64(ConfigQMax, g.Q.Hi, "highest expert hit rate on dry land")
	fs.Int(ConfigThreads, 0, "sweep / simulation workers (0 = NumCPU-1)")
	fs.String(ConfigOnError, sweep.SkipInvalid.String(), "what a sweep does with a degenerate cell: skip or abort")
	fs.String(ConfigFormat, "table", "sweep output format")
	fs.Bool(ConfigDebug, false, "debug logging")
	fs.String(ConfigFile, "", "optional YAML config file")
	return fs
}

// Load reads configuration from args, then WILDCAT_* environment variables,
// then an optional YAML file named by --config. Explicit flags win over the
// environment, which wins over the file.
func (c *Config) Load(args []string) error {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.LoadFlags(fs)
}

// LoadFlags is Load for a flag set that has already been parsed.
func (c *Config) LoadFlags(fs *pflag.FlagSet) error {
	c.Viper = *viper.New()
	c.setDefaults()
	c.SetEnvPrefix("wildcat")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	if f := c.GetString(ConfigFile); f != "" {
		c.SetConfigFile(f)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", f, err)
		}
	}
	return nil
}

// SanitizedSettings returns the settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	c.Lock()
	defer c.Unlock()
	return c.AllSettings()
}

func (c *Config) Scenario() (emv.Scenario, error) {
	sc := emv.Scenario{
		PriorOil:  c.GetFloat64(ConfigPriorOil),
		LandCost:  c.GetFloat64(ConfigLandCost),
		OilPayoff: c.GetFloat64(ConfigOilPayoff),
	}
	return sc, sc.Validate()
}

func (c *Config) Weights() (emv.Weights, error) {
	mode, err := emv.ParseHireMode(c.GetString(ConfigHireMode))
	if err != nil {
		return emv.Weights{}, err
	}
	w := emv.Weights{
		Buy:       c.GetFloat64(ConfigBuyWeight),
		DoNothing: c.GetFloat64(ConfigDoNothingWeight),
		HireMode:  mode,
		Hire:      c.GetFloat64(ConfigHireWeight),
	}
	return w, w.Validate()
}

func (c *Config) Grid() (sweep.Grid, error) {
	g := sweep.Grid{
		Resolution: c.GetInt(ConfigGridResolution),
		P:          sweep.Range{Lo: c.GetFloat64(ConfigPMin), Hi: c.GetFloat64(ConfigPMax)},
		Q:          sweep.Range{Lo: c.GetFloat64(ConfigQMin), Hi: c.GetFloat64(ConfigQMax)},
	}
	return g, g.Validate()
}

func (c *Config) ErrorPolicy() (sweep.ErrorPolicy, error) {
	return sweep.ParseErrorPolicy(c.GetString(ConfigOnError))
}

// Solver builds a solver from the configured scenario and weights.
func (c *Config) Solver() (*emv.Solver, error) {
	sc, err := c.Scenario()
	if err != nil {
		return nil, err
	}
	w, err := c.Weights()
	if err != nil {
		return nil, err
	}
	return emv.NewSolver(sc, w)
}
