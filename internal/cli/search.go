package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search plan steps and log entries by keyword",
		Long:  "Search step titles, descriptions and objectives plus log entry text. Every word of the query must match.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("kind", "", "Filter by kind: step or log")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	if kind != "" && kind != store.HitStep && kind != store.HitLog {
		exitErr("search", fmt.Errorf("kind must be %q or %q", store.HitStep, store.HitLog))
	}

	e := setup(cmd.Context())
	defer e.Close()

	hits, err := e.store.Search(cmd.Context(), store.SearchParams{
		Query: query,
		Kind:  kind,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	if hits == nil {
		hits = []store.SearchHit{}
	}

	output(cmd.OutOrStdout(), hits, func(w io.Writer) {
		if len(hits) == 0 {
			fmt.Fprintln(w, "no matches")
		}
		for _, h := range hits {
			if h.Kind == store.HitStep {
				fmt.Fprintf(w, "step %s/%s/%s  %s\n", h.ID, h.DayID, h.StepID, h.Title)
			} else {
				fmt.Fprintf(w, "log  %s  %s (line %d)\n", h.ID, h.Title, h.Line)
			}
			if h.Snippet != "" {
				fmt.Fprintf(w, "     %s\n", strings.ReplaceAll(h.Snippet, "\n", "\n     "))
			}
		}
	})
}
