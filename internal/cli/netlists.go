package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentsim/internal/netlist"
)

var netlistsCmd = &cobra.Command{
	Use:   "netlists",
	Short: "List available agent populations",
	RunE:  runNetlists,
}

func init() {
	rootCmd.AddCommand(netlistsCmd)
}

func runNetlists(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, n := range netlist.All() {
		fmt.Fprintf(out, "%s\n  %s\n", n.Name, n.Description)
		for _, p := range n.Params {
			fmt.Fprintf(out, "  - %-16s %-6s default=%v  %s\n", p.Name, p.Type, p.Default, p.Description)
		}
	}
	return nil
}
