package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/domino14/wildcat/bayes"
	"github.com/domino14/wildcat/config"
	"github.com/domino14/wildcat/emv"
	"github.com/domino14/wildcat/montecarlo"
	"github.com/domino14/wildcat/report"
	"github.com/domino14/wildcat/sweep"
	"github.com/domino14/wildcat/tree"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "wildcat",
		Short: "Value a wildcat oil lease and the expert who predicts it",
		Long: `wildcat computes the expected monetary value of a land deal where an
expert's oil prediction can be bought before drilling, and sweeps that value
over a grid of expert reliabilities.`,
		Version:       GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.LoadFlags(cmd.Flags()); err != nil {
				return err
			}
			logger := setupLogging(a.cfg.GetBool(config.ConfigDebug))
			logger.Debug().Interface("config", a.cfg.SanitizedSettings()).Msg("loaded-config")
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(config.Flags())

	rootCmd.AddCommand(a.sweepCmd())
	rootCmd.AddCommand(a.solveCmd())
	rootCmd.AddCommand(a.treeCmd())
	rootCmd.AddCommand(a.simulateCmd())
	return rootCmd
}

func reliabilityFlags(cmd *cobra.Command, r *bayes.Reliability) {
	cmd.Flags().Float64Var(&r.P, "p", 0.7, "P(expert predicts oil | oil)")
	cmd.Flags().Float64Var(&r.Q, "q", 0.7, "P(expert predicts no oil | no oil)")
}

func (a *app) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate the total EMV over the (p, q) grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			solver, err := a.cfg.Solver()
			if err != nil {
				return err
			}
			g, err := a.cfg.Grid()
			if err != nil {
				return err
			}
			policy, err := a.cfg.ErrorPolicy()
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(a.cfg.GetString(config.ConfigFormat))
			if err != nil {
				return err
			}
			d := sweep.NewDriver(solver,
				sweep.WithThreads(a.cfg.GetInt(config.ConfigThreads)),
				sweep.WithErrorPolicy(policy))
			res, err := d.Run(cmd.Context(), g)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), format, res)
		},
	}
}

func (a *app) solveCmd() *cobra.Command {
	var r bayes.Reliability
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print every intermediate value for one expert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			solver, err := a.cfg.Solver()
			if err != nil {
				return err
			}
			b, err := solver.Solve(r)
			if err != nil {
				return err
			}
			return writeBreakdown(cmd.OutOrStdout(), b, solver)
		},
	}
	reliabilityFlags(cmd, &r)
	return cmd
}

func writeBreakdown(w io.Writer, b emv.Breakdown, solver *emv.Solver) error {
	var ss strings.Builder
	po := b.Posterior
	fmt.Fprintf(&ss, "Expert: %s\n", b.Reliability)
	fmt.Fprintf(&ss, "P(predict oil) = %.4f, P(oil | predict oil) = %.4f\n",
		po.PredictOil, po.OilGivenPredictOil)
	fmt.Fprintf(&ss, "P(predict no oil) = %.4f, P(oil | predict no oil) = %.4f\n",
		po.PredictNoOil, po.OilGivenPredictNoOil)
	for _, d := range []emv.DrillDecision{b.OnPredictOil, b.OnPredictNoOil} {
		choice := "don't drill"
		if d.Drill {
			choice = "drill"
		}
		fmt.Fprintf(&ss, "On %s: drill EMV %.2f, floor %.2f, EMV %.2f (%s)\n",
			d.Prediction, d.DrillEMV, d.Floor, d.EMV, choice)
	}
	fmt.Fprintf(&ss, "EMV hire expert:       %.2f\n", b.Hire)
	fmt.Fprintf(&ss, "EMV don't hire expert: %.2f\n", b.NotHire)
	fmt.Fprintf(&ss, "EMV buy:               %.2f (hire expert: %v)\n", b.Buy, b.HireExpert)
	fmt.Fprintf(&ss, "EMV total:             %.2f\n", b.Total)
	fmt.Fprintf(&ss, "Value of sample information:  %.2f\n", b.SampleInformation())
	fmt.Fprintf(&ss, "Value with perfect information: %.2f\n", solver.PerfectInformation())
	_, err := io.WriteString(w, ss.String())
	return err
}

func (a *app) treeCmd() *cobra.Command {
	var r bayes.Reliability
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the solved decision tree as Graphviz DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			solver, err := a.cfg.Solver()
			if err != nil {
				return err
			}
			b, err := solver.Solve(r)
			if err != nil {
				return err
			}
			dot, err := tree.DOT(tree.Build(b, solver.Scenario(), solver.Weights()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dot)
			return err
		},
	}
	reliabilityFlags(cmd, &r)
	return cmd
}

func (a *app) simulateCmd() *cobra.Command {
	var (
		r          bayes.Reliability
		iterations int
		seed       uint64
		stop       string
		tolerance  float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Check the solved EMV by playing the tree many times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			solver, err := a.cfg.Solver()
			if err != nil {
				return err
			}
			sc, err := montecarlo.ParseStoppingCondition(stop)
			if err != nil {
				return err
			}
			sim := montecarlo.NewSimmer(solver)
			sim.SetThreads(a.cfg.GetInt(config.ConfigThreads))
			sim.SetIterations(iterations)
			sim.SetStoppingCondition(sc, tolerance)
			if cmd.Flags().Changed("seed") {
				sim.SetSeed(seed)
			}
			if err := sim.Prepare(r); err != nil {
				return err
			}
			est, err := sim.Simulate(cmd.Context())
			if err != nil {
				return err
			}
			zerolog.Ctx(cmd.Context()).Info().
				Int("iterations", est.Iterations).
				Bool("agrees", est.Agrees()).
				Msg("simulation-done")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), est.String())
			return err
		},
	}
	reliabilityFlags(cmd, &r)
	cmd.Flags().IntVar(&iterations, "iterations", montecarlo.DefaultIterations, "number of plays")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible run")
	cmd.Flags().StringVar(&stop, "stop", "none", "stop early at this confidence level: none, 95 or 99")
	cmd.Flags().Float64Var(&tolerance, "tolerance", montecarlo.DefaultTolerance, "relative half-width that ends an early stop")
	return cmd
}
