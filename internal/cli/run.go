package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"agentsim/internal/config"
	"agentsim/internal/logger"
	"agentsim/internal/runner"
	"agentsim/internal/store"
)

var (
	runConfigPath string
	runOutputDir  string
	runSeed       int64
	runTicks      int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a YAML config",
	Long: `Run a simulation described by a YAML config. Metrics rows are appended to
<output_dir>/data.csv; the header is only written when the file is new.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to YAML config (required)")
	runCmd.Flags().StringVar(&runOutputDir, "out", "", "output directory; overrides output_dir")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed; overrides seed")
	runCmd.Flags().IntVar(&runTicks, "ticks", 0, "run length in ticks; overrides the strategy's max time")
	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cmd, cfg)

	logCfg := cfg.Logging
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	lg, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	defer lg.Close()

	opts := runner.Options{Logger: lg.Logger}
	if cfg.Store != "" {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Store = st
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := runner.Run(ctx, runner.FromConfig(cfg), opts)
	if err != nil {
		return err
	}
	printOutcome(cmd, outcome)
	return nil
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("ticks") {
		cfg.Strategy = config.MergeStrategy(cfg.Strategy, config.StrategyConfig{MaxTicks: config.Ticks(runTicks)})
	}
}

func printOutcome(cmd *cobra.Command, o *runner.Outcome) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s): %d ticks, %d rows\n", o.RunID, o.Netlist, o.Result.Ticks, o.Result.Rows)
	if o.CSVPath != "" {
		fmt.Fprintf(out, "Wrote %s\n", o.CSVPath)
	}
	if len(o.Summary) == 0 {
		return
	}
	fmt.Fprintf(out, "%-22s %-8s %-14s %-14s %-14s %-14s\n", "metric", "samples", "first", "last", "min", "max")
	for _, s := range o.Summary {
		fmt.Fprintf(out, "%-22s %-8d %-14s %-14s %-14s %-14s\n",
			s.Metric, s.Count,
			humanize.FormatFloat("#,###.##", s.First),
			humanize.FormatFloat("#,###.##", s.Last),
			humanize.FormatFloat("#,###.##", s.Min),
			humanize.FormatFloat("#,###.##", s.Max),
		)
	}
}
