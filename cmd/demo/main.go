package main

import (
	"context"
	"flag"
	"fmt"

	"agentsim/internal/config"
	"agentsim/internal/logger"
	"agentsim/internal/netlist/coffeeshop"
	"agentsim/internal/runner"
)

// Demo:
// - Build the coffee shop population with its default strategy (10 days, 1 day ticks)
// - Run it with console logging
// - Print the shop's wallet for every tick to show how the pieces fit together
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	buyers := flag.Int("n", 100, "Number of coffee buyers")
	seed := flag.Int64("seed", 42, "Random seed")
	outDir := flag.String("out", "", "Optional output directory for data.csv (e.g. results/demo)")
	flag.Parse()

	req := runner.Request{
		Netlist:   coffeeshop.Name,
		Seed:      *seed,
		Params:    map[string]any{"num_buyers": *buyers},
		OutputDir: *outDir,
	}
	logCfg := logger.Config{Level: "info", Pretty: true}

	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		req = runner.FromConfig(cfg)
		if *outDir != "" {
			req.OutputDir = *outDir
		}
		logCfg = cfg.Logging
	}

	lg, err := logger.New(logCfg)
	if err != nil {
		panic(err)
	}
	defer lg.Close()

	outcome, err := runner.Run(context.Background(), req, runner.Options{Logger: lg.Logger})
	if err != nil {
		panic(err)
	}

	fmt.Printf("\n%s\n", outcome.Strategy)
	if outcome.Series != nil {
		for _, name := range outcome.Series.Names() {
			for tick, v := range outcome.Series.Values(name) {
				fmt.Printf("tick=%3d  %s=%10.2f\n", tick, name, v)
			}
		}
	}
	if outcome.CSVPath != "" {
		fmt.Printf("\nWrote CSV: %s\n", outcome.CSVPath)
	}
	fmt.Printf("\nDone. %d ticks, %d log rows\n", outcome.Result.Ticks, outcome.Result.Rows)
}
