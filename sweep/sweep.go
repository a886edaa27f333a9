// Package sweep evaluates the EMV solver over a grid of expert
// reliabilities.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wildcat/bayes"
)

// Evaluator computes the top-level EMV for one expert. *emv.Solver
// satisfies it.
type Evaluator interface {
	Total(r bayes.Reliability) (float64, error)
}

// ErrorPolicy decides what a failing cell does to the rest of the sweep.
type ErrorPolicy int

const (
	// SkipInvalid marks the cell and keeps going.
	SkipInvalid ErrorPolicy = iota
	// Abort stops the sweep at the first failing cell.
	Abort
)

func (p ErrorPolicy) String() string {
	if p == Abort {
		return "abort"
	}
	return "skip"
}

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip", "":
		return SkipInvalid, nil
	case "abort":
		return Abort, nil
	}
	return 0, fmt.Errorf("unknown error policy %q", s)
}

type Driver struct {
	eval    Evaluator
	threads int
	policy  ErrorPolicy
}

type Option func(*Driver)

// WithThreads sets the number of worker goroutines; values below 1 are
// ignored.
func WithThreads(n int) Option {
	return func(d *Driver) {
		if n >= 1 {
			d.threads = n
		}
	}
}

func WithErrorPolicy(p ErrorPolicy) Option {
	return func(d *Driver) {
		d.policy = p
	}
}

func NewDriver(eval Evaluator, opts ...Option) *Driver {
	d := &Driver{
		eval:    eval,
		threads: int(math.Max(1, float64(runtime.NumCPU()-1))),
		policy:  SkipInvalid,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Driver) Threads() int {
	return d.threads
}

// Run evaluates every cell of g. Cells are claimed from a shared counter by
// the workers and written to their own slot, so the output order is fixed
// regardless of scheduling.
func (d *Driver) Run(ctx context.Context, g Grid) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	rels := g.Reliabilities()
	res := &Result{Grid: g, Cells: make([]Cell, len(rels))}

	threads := min(d.threads, len(rels))
	logger.Debug().Int("cells", len(rels)).Int("threads", threads).
		Str("policy", d.policy.String()).Msg("sweep-starting")
	tstart := time.Now()

	var next atomic.Int64
	var invalid atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)

	for t := 0; t < threads; t++ {
		eg.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				idx := int(next.Add(1) - 1)
				if idx >= len(rels) {
					return nil
				}
				r := rels[idx]
				emv, err := d.eval.Total(r)
				res.Cells[idx] = Cell{P: r.P, Q: r.Q, EMV: emv}
				if err == nil {
					continue
				}
				if d.policy == Abort {
					return fmt.Errorf("cell %d (%s): %w", idx, r, err)
				}
				invalid.Add(1)
				res.Cells[idx].EMV = math.NaN()
				res.Cells[idx].Err = err
				logger.Debug().Err(err).Float64("p", r.P).Float64("q", r.Q).
					Msg("sweep-cell-invalid")
			}
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Debug().Err(err).Msg("sweep-stopped")
		return nil, err
	}
	logger.Info().Int("cells", len(rels)).Int64("invalid", invalid.Load()).
		Dur("elapsed", time.Since(tstart)).Msg("sweep-finished")
	return res, nil
}
