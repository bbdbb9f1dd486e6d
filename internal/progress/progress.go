// Package progress computes and updates step completion on a plan. All
// functions are pure: plans passed in are never modified.
package progress

import (
	"math"

	"github.com/rcliao/learnpath/internal/model"
)

// Progress is a completion summary.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

func newProgress(completed, total int) Progress {
	p := Progress{Completed: completed, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return p
}

// ToggleStep returns a plan with the completion of one step inverted. The
// days slice and the touched day's steps slice are fresh; other days keep
// their step slices. An unknown day or step returns plan unchanged.
func ToggleStep(plan model.Plan, dayID, stepID string) model.Plan {
	di, si := -1, -1
	for i, d := range plan.Days {
		if d.ID != dayID {
			continue
		}
		for j, s := range d.Steps {
			if s.ID == stepID {
				di, si = i, j
				break
			}
		}
		break
	}
	if si < 0 {
		return plan
	}

	days := make([]model.Day, len(plan.Days))
	copy(days, plan.Days)
	steps := make([]model.Step, len(days[di].Steps))
	copy(steps, days[di].Steps)
	steps[si].Completed = !steps[si].Completed
	days[di].Steps = steps

	return model.Plan{Topic: plan.Topic, Days: days}
}

// DayProgress summarizes one day.
func DayProgress(day model.Day) Progress {
	done := 0
	for _, s := range day.Steps {
		if s.Completed {
			done++
		}
	}
	return newProgress(done, len(day.Steps))
}

// PlanProgress sums completion over all days.
func PlanProgress(plan model.Plan) Progress {
	total, done := plan.StepCount()
	return newProgress(done, total)
}

// Activity is a step located within its plan.
type Activity struct {
	DayID    string     `json:"dayId"`
	DayTitle string     `json:"dayTitle"`
	Index    int        `json:"index"`
	Step     model.Step `json:"step"`
}

// Flatten lists every step in display order.
func Flatten(plan model.Plan) []Activity {
	var out []Activity
	for _, d := range plan.Days {
		for _, s := range d.Steps {
			out = append(out, Activity{DayID: d.ID, DayTitle: d.Title, Index: len(out), Step: s})
		}
	}
	return out
}

// FirstIncomplete returns the first step not yet completed. When every step is
// done it returns the last step; an empty plan yields false.
func FirstIncomplete(plan model.Plan) (Activity, bool) {
	all := Flatten(plan)
	if len(all) == 0 {
		return Activity{}, false
	}
	for _, a := range all {
		if !a.Step.Completed {
			return a, true
		}
	}
	return all[len(all)-1], true
}

// Direction selects the neighbor returned by Neighbor.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Neighbor returns the activity before or after stepID.
func Neighbor(plan model.Plan, stepID string, dir Direction) (Activity, bool) {
	all := Flatten(plan)
	for i, a := range all {
		if a.Step.ID != stepID {
			continue
		}
		j := i + int(dir)
		if j < 0 || j >= len(all) {
			return Activity{}, false
		}
		return all[j], true
	}
	return Activity{}, false
}

// Find locates a step by id.
func Find(plan model.Plan, stepID string) (Activity, bool) {
	for _, a := range Flatten(plan) {
		if a.Step.ID == stepID {
			return a, true
		}
	}
	return Activity{}, false
}
