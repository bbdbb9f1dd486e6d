package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage and progress statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	stats := e.store.Stats(cmd.Context(), e.cfg.Storage.Backend)
	output(cmd.OutOrStdout(), stats, func(w io.Writer) {
		fmt.Fprintf(w, "backend: %s (blob v%d, %d bytes)\n", stats.Backend, stats.Version, stats.BlobBytes)
		fmt.Fprintf(w, "plans: %d, log entries: %d\n", stats.Plans, stats.LogEntries)
		fmt.Fprintf(w, "steps: %d/%d complete\n", stats.CompletedSteps, stats.TotalSteps)
		for _, p := range stats.PerPlan {
			mark := " "
			if p.ID == stats.ActivePlanID {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s  %-24s %d/%d\n", mark, p.ID, p.Topic, p.Completed, p.Steps)
		}
	})
}
