package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/progress"
)

// planSummary is the list view of a stored plan.
type planSummary struct {
	ID             string               `json:"id"`
	Topic          string               `json:"topic"`
	Level          model.Level          `json:"level"`
	TimeCommitment model.TimeCommitment `json:"timeCommitment"`
	Progress       progress.Progress    `json:"progress"`
	Active         bool                 `json:"active"`
	CreatedAt      int64                `json:"createdAt"`
	UpdatedAt      int64                `json:"updatedAt"`
}

func init() {
	plans := &cobra.Command{
		Use:   "plans",
		Short: "Inspect and update learning plans",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List plans, most recently updated first",
		Args:  cobra.NoArgs,
		Run:   runPlansList,
	}
	list.Flags().IntP("limit", "l", 0, "Max results (0 for all)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a plan",
		Args:  cobra.ExactArgs(1),
		Run:   runPlansShow,
	}

	activate := &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a plan the active one",
		Args:  cobra.ExactArgs(1),
		Run:   runPlansActivate,
	}

	toggle := &cobra.Command{
		Use:   "toggle <id> <day-id> <step-id>",
		Short: "Flip a step between complete and incomplete",
		Args:  cobra.ExactArgs(3),
		Run:   runPlansToggle,
	}

	next := &cobra.Command{
		Use:   "next [id]",
		Short: "Show the first incomplete step (active plan by default)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runPlansNext,
	}

	plans.AddCommand(list, show, activate, toggle, next)
	RootCmd.AddCommand(plans)
}

func runPlansList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	e := setup(cmd.Context())
	defer e.Close()

	active := e.store.GetActivePlanID(cmd.Context())
	records := e.store.GetAllPlans(cmd.Context())
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]planSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, planSummary{
			ID:             rec.ID,
			Topic:          rec.Plan.Topic,
			Level:          rec.UserProfile.Level,
			TimeCommitment: rec.UserProfile.TimeCommitment,
			Progress:       progress.PlanProgress(rec.Plan),
			Active:         rec.ID == active,
			CreatedAt:      rec.CreatedAt,
			UpdatedAt:      rec.UpdatedAt,
		})
	}

	output(cmd.OutOrStdout(), out, func(w io.Writer) {
		if len(out) == 0 {
			fmt.Fprintln(w, "no plans")
		}
		for _, p := range out {
			mark := " "
			if p.Active {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s  %-24s %3d%% (%d/%d)  updated %s\n", mark, p.ID, p.Topic,
				p.Progress.Percent, p.Progress.Completed, p.Progress.Total,
				time.UnixMilli(p.UpdatedAt).Format(time.DateTime))
		}
	})
}

func mustPlan(e *env, cmd *cobra.Command, id string) model.PlanRecord {
	rec, ok := e.store.GetPlan(cmd.Context(), id)
	if !ok {
		exitErr("plan", fmt.Errorf("not found: %s", id))
	}
	return rec
}

func runPlansShow(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	rec := mustPlan(e, cmd, args[0])
	output(cmd.OutOrStdout(), rec, func(w io.Writer) { writePlanText(w, rec) })
}

func writePlanText(w io.Writer, rec model.PlanRecord) {
	p := progress.PlanProgress(rec.Plan)
	fmt.Fprintf(w, "%s (%s, %s) %d%% complete\n", rec.Plan.Topic, rec.UserProfile.Level, rec.UserProfile.TimeCommitment, p.Percent)
	for _, day := range rec.Plan.Days {
		dp := progress.DayProgress(day)
		fmt.Fprintf(w, "\n%s [%s] %d/%d\n", day.Title, day.ID, dp.Completed, dp.Total)
		for _, s := range day.Steps {
			box := "[ ]"
			if s.Completed {
				box = "[x]"
			}
			fmt.Fprintf(w, "  %s %s  %s (%s, %s)\n", box, s.ID, s.Title, s.Type, s.Duration)
			if s.URL != "" {
				fmt.Fprintf(w, "        %s\n", s.URL)
			}
		}
	}
}

func runPlansActivate(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	rec := mustPlan(e, cmd, args[0])
	e.store.SetActivePlan(cmd.Context(), rec.ID)
	e.checkWrite("activate")

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"active":%q}`+"\n", rec.ID)
}

func runPlansToggle(cmd *cobra.Command, args []string) {
	id, dayID, stepID := args[0], args[1], args[2]

	e := setup(cmd.Context())
	defer e.Close()

	rec := mustPlan(e, cmd, id)
	if act, ok := progress.Find(rec.Plan, stepID); !ok || act.DayID != dayID {
		exitErr("toggle", fmt.Errorf("no step %s in day %s", stepID, dayID))
	}
	plan := progress.ToggleStep(rec.Plan, dayID, stepID)
	e.store.UpdatePlan(cmd.Context(), id, plan)
	e.checkWrite("toggle")

	act, _ := progress.Find(plan, stepID)
	result := struct {
		PlanID    string            `json:"planId"`
		DayID     string            `json:"dayId"`
		StepID    string            `json:"stepId"`
		Completed bool              `json:"completed"`
		Progress  progress.Progress `json:"progress"`
	}{id, dayID, stepID, act.Step.Completed, progress.PlanProgress(plan)}

	output(cmd.OutOrStdout(), result, func(w io.Writer) {
		state := "incomplete"
		if result.Completed {
			state = "complete"
		}
		fmt.Fprintf(w, "%s marked %s, plan %d%% complete\n", act.Step.Title, state, result.Progress.Percent)
	})
}

func runPlansNext(cmd *cobra.Command, args []string) {
	e := setup(cmd.Context())
	defer e.Close()

	id := e.store.GetActivePlanID(cmd.Context())
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		exitErr("next", fmt.Errorf("no active plan; pass a plan id"))
	}
	rec := mustPlan(e, cmd, id)
	act, ok := progress.FirstIncomplete(rec.Plan)
	if !ok {
		exitErr("next", fmt.Errorf("plan %s has no steps", id))
	}

	output(cmd.OutOrStdout(), act, func(w io.Writer) {
		s := act.Step
		status := "next up"
		if s.Completed {
			status = "all done, last step"
		}
		fmt.Fprintf(w, "%s: %s (%s, %s)\n  %s / %s\n", status, s.Title, s.Type, s.Duration, act.DayTitle, s.ID)
		if s.URL != "" {
			fmt.Fprintf(w, "  %s\n", s.URL)
		}
	})
}
