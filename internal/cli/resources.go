package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/search"
)

type resource struct {
	search.Result
	Preview *search.Preview `json:"preview,omitempty"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "resources <step title...>",
		Short: "Find learning resources for a step",
		Long:  "Search the web for resources matching a step title. Requires Google Custom Search credentials.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runResources,
	}

	cmd.Flags().StringP("type", "t", string(model.StepArticle), "Step type: video, article, quiz, exercise or project")
	cmd.Flags().IntP("num", "n", 5, "Number of results (max 10)")
	cmd.Flags().Bool("preview", false, "Fetch each result and summarize its headings")

	RootCmd.AddCommand(cmd)
}

func runResources(cmd *cobra.Command, args []string) {
	stepType, _ := cmd.Flags().GetString("type")
	num, _ := cmd.Flags().GetInt("num")
	preview, _ := cmd.Flags().GetBool("preview")
	title := strings.Join(args, " ")

	st := model.StepType(strings.ToLower(stepType))
	if !model.ValidStepTypes[st] {
		exitErr("resources", fmt.Errorf("unknown step type %q", stepType))
	}

	cfg := loadConfig()
	log := newLogger(cfg)
	defer log.Sync()

	searcher := search.NewFromConfig(cfg.Search)
	if searcher == nil {
		exitErr("resources", fmt.Errorf("search is not configured; set GOOGLE_API_KEY and GOOGLE_SEARCH_ENGINE_ID"))
	}

	ctx := cmd.Context()
	results, err := searcher.Search(ctx, search.LearningQuery(title, st), search.Options{Num: num})
	if err != nil {
		exitErr("search", err)
	}

	out := make([]resource, len(results))
	for i, r := range results {
		out[i] = resource{Result: r}
	}
	if preview {
		p := search.NewPreviewer(0)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i := range out {
			g.Go(func() error {
				pv, err := p.Preview(gctx, out[i].URL)
				if err != nil {
					log.Debug("preview failed", "url", out[i].URL, "error", err)
					return nil
				}
				out[i].Preview = &pv
				return nil
			})
		}
		_ = g.Wait()
	}

	output(cmd.OutOrStdout(), out, func(w io.Writer) {
		if len(out) == 0 {
			fmt.Fprintln(w, "no results")
		}
		for _, r := range out {
			fmt.Fprintf(w, "%s\n  %s\n", r.Title, r.URL)
			if r.Description != "" {
				fmt.Fprintf(w, "  %s\n", r.Description)
			}
			if r.Preview != nil {
				for _, h := range r.Preview.Headings {
					fmt.Fprintf(w, "    - %s\n", h)
				}
			}
		}
	})
}
