package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentsim/internal/config"
	"agentsim/internal/engine"
	"agentsim/internal/metrics"
	"agentsim/internal/netlist"
	"agentsim/internal/store"
	"agentsim/internal/strategy"
)

func TestRunCoffeeShopDefaults(t *testing.T) {
	dir := t.TempDir()
	clock := &engine.ManualClock{}

	out, err := Run(context.Background(), Request{
		Netlist:   "coffeeshop",
		Seed:      42,
		Params:    netlist.Params{"num_buyers": 10},
		OutputDir: dir,
	}, Options{Logger: zerolog.Nop(), Clock: clock})
	require.NoError(t, err)

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "coffeeshop", out.Netlist)
	assert.Equal(t, 10, out.Strategy.MaxTicks())
	assert.Equal(t, 10, out.Result.Ticks)
	assert.Equal(t, 10, out.Result.Rows)
	assert.Equal(t, 9, clock.Advances)
	assert.Equal(t, filepath.Join(dir, engine.CSVFilename), out.CSVPath)

	require.NotNil(t, out.Series)
	assert.Equal(t, 10, out.Series.Len())
	require.Len(t, out.Summary, 1)
	assert.Equal(t, "coffee_shop_wallet", out.Summary[0].Metric)

	raw, err := os.ReadFile(out.CSVPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 11)
}

func TestRunSameSeedSameResult(t *testing.T) {
	run := func() []float64 {
		out, err := Run(context.Background(), Request{Netlist: "coffeeshop", Seed: 9}, Options{Logger: zerolog.Nop()})
		require.NoError(t, err)
		return out.Series.Values("coffee_shop_wallet")
	}
	assert.Equal(t, run(), run())
}

func TestRunStrategyOverride(t *testing.T) {
	out, err := Run(context.Background(), Request{
		Netlist:  "coffeeshop",
		Strategy: config.StrategyConfig{MaxTicks: config.Ticks(3)},
	}, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Result.Ticks)
	assert.Equal(t, 3, out.Result.Rows)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), Request{Netlist: "nope"}, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, netlist.ErrUnknownNetlist)

	_, err = Run(context.Background(), Request{
		Netlist:  "coffeeshop",
		Strategy: config.StrategyConfig{TimeStep: "-1h"},
	}, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, strategy.ErrConfiguration)

	_, err = Run(context.Background(), Request{
		Netlist:  "coffeeshop",
		Strategy: config.StrategyConfig{MaxTicks: config.Ticks(0)},
	}, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, strategy.ErrConfiguration, "an explicit zero does not fall back to the netlist default")

	_, err = Run(context.Background(), Request{
		Netlist: "coffeeshop",
		Params:  netlist.Params{"num_buyers": -3},
	}, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, netlist.ErrInvalidParam)

	_, err = Run(context.Background(), Request{
		Netlist: "coffeeshop",
		Params:  netlist.Params{"coffee_cost": "5"},
	}, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, netlist.ErrInvalidParam)
}

func TestRunWithStoreAndMetrics(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()
	m := metrics.New()

	out, err := Run(context.Background(), Request{Netlist: "exchange", Seed: 1, Strategy: config.StrategyConfig{MaxTicks: config.Ticks(48)}},
		Options{Logger: zerolog.Nop(), Store: st, Metrics: m})
	require.NoError(t, err)

	run, err := st.GetRun(out.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDone, run.Status)
	assert.Equal(t, 48, run.Ticks)
	assert.Equal(t, 2, run.Rows)

	rows, err := st.Rows(out.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Tick)
	assert.Equal(t, 24, rows[1].Tick)
	assert.InDelta(t, 2000.0, rows[1].Values["total_usd"], 1e-6)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("exchange", "ok")))
	assert.Equal(t, 48.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("exchange")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("exchange")))
}

func TestRunCancelledIsStoredAsFailed(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, Request{Netlist: "coffeeshop"}, Options{Logger: zerolog.Nop(), Store: st})
	assert.ErrorIs(t, err, context.Canceled)

	runs, err := st.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
}

func TestFromConfig(t *testing.T) {
	req := FromConfig(&config.Config{
		Netlist:   "coffeeshop",
		Seed:      5,
		OutputDir: "out",
		Strategy:  config.StrategyConfig{MaxTicks: config.Ticks(2)},
		Params:    map[string]any{"num_buyers": 1},
	})
	assert.Equal(t, "coffeeshop", req.Netlist)
	assert.Equal(t, int64(5), req.Seed)
	assert.Equal(t, "out", req.OutputDir)
	require.NotNil(t, req.Strategy.MaxTicks)
	assert.Equal(t, 2, *req.Strategy.MaxTicks)
	assert.Equal(t, 1, req.Params["num_buyers"])
}
