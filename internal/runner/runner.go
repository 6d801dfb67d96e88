// Package runner turns a run request into a built population, an engine, and its sinks.
package runner

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agentsim/internal/analysis"
	"agentsim/internal/config"
	"agentsim/internal/engine"
	"agentsim/internal/metrics"
	"agentsim/internal/netlist"
	"agentsim/internal/sim"
	"agentsim/internal/store"
	"agentsim/internal/strategy"

	// Registered populations.
	_ "agentsim/internal/netlist/coffeeshop"
	_ "agentsim/internal/netlist/exchange"
)

// Request describes one run. Strategy fields left empty take the netlist defaults.
type Request struct {
	Netlist   string
	Seed      int64
	Strategy  config.StrategyConfig
	Params    netlist.Params
	OutputDir string
}

func FromConfig(c *config.Config) Request {
	return Request{
		Netlist:   c.Netlist,
		Seed:      c.Seed,
		Strategy:  c.Strategy,
		Params:    netlist.Params(c.Params),
		OutputDir: c.OutputDir,
	}
}

// Options are the shared collaborators of every run.
type Options struct {
	Logger  zerolog.Logger
	Store   *store.Store
	Metrics *metrics.Metrics
	Clock   engine.Clock
}

type Outcome struct {
	RunID    string
	Netlist  string
	Strategy strategy.Strategy
	Result   *engine.Result
	Series   *sim.Series
	Summary  []analysis.SeriesSummary
	CSVPath  string
}

// Run builds and executes one simulation.
func Run(ctx context.Context, req Request, opts Options) (*Outcome, error) {
	nl, err := netlist.Lookup(req.Netlist)
	if err != nil {
		return nil, err
	}
	strat, err := config.MergeStrategy(nl.DefaultStrategy, req.Strategy).ToStrategy()
	if err != nil {
		return nil, err
	}
	built, err := nl.Build(netlist.BuildInput{
		Strategy: strat,
		Params:   req.Params,
		Rand:     rand.New(rand.NewSource(req.Seed)),
	})
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", nl.Name, err)
	}

	runID := uuid.NewString()
	log := opts.Logger.With().Str("run", runID).Str("netlist", nl.Name).Logger()

	engOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithLogFunc(built.LogFunc),
	}
	if opts.Clock != nil {
		engOpts = append(engOpts, engine.WithClock(opts.Clock))
	}
	out := &Outcome{RunID: runID, Netlist: nl.Name, Strategy: strat}
	if req.OutputDir != "" {
		engOpts = append(engOpts, engine.WithOutputDir(req.OutputDir))
		out.CSVPath = filepath.Join(req.OutputDir, engine.CSVFilename)
	}
	if opts.Store != nil {
		if err := opts.Store.CreateRun(store.Run{ID: runID, Netlist: nl.Name, Seed: req.Seed, Strategy: strat.String()}); err != nil {
			return nil, err
		}
		engOpts = append(engOpts, engine.WithRecorder(opts.Store.Recorder(runID)))
	}
	if opts.Metrics != nil {
		engOpts = append(engOpts, engine.WithObserver(opts.Metrics.Observer(nl.Name)))
	}

	eng := engine.New(built.State, engOpts...)
	res, runErr := eng.Run(ctx)

	if opts.Metrics != nil {
		opts.Metrics.RunFinished(nl.Name, runErr)
	}
	if opts.Store != nil {
		if err := opts.Store.FinishRun(runID, built.State.Tick(), eng.Rows(), runErr); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	out.Result = res
	if series, ok := built.State.KPIs().(*sim.Series); ok {
		out.Series = series
		out.Summary = analysis.Summarize(series)
	}
	return out, nil
}
