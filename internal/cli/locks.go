package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/lockhammer/internal/hammer/strategy"
)

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "List the available lock strategies",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		listLocks(cmd.OutOrStdout(), strategy.DefaultRegistry(), verbose)
	},
}

// listLocks prints each registered strategy. With verbose set it also
// prints the arguments each one accepts after "--".
func listLocks(w io.Writer, registry *strategy.Registry, verbose bool) {
	for _, name := range registry.Names() {
		fmt.Fprintf(w, "%-10s %s\n", name, registry.Describe(name))
		if !verbose {
			continue
		}
		usage := registry.Usage(name)
		if usage == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(usage, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
