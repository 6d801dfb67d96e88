package cli

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "agentsim",
	Short: "agentsim - tick-driven agent economy simulator",
	Long: `agentsim runs populations of agents that hold currency balances and pay each
other once per simulated tick, and writes periodic metrics to data.csv.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
}

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
