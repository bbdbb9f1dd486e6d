// Package model defines the core learning plan data types.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StepType is the kind of learning activity a step represents.
type StepType string

const (
	StepVideo    StepType = "video"
	StepArticle  StepType = "article"
	StepQuiz     StepType = "quiz"
	StepExercise StepType = "exercise"
	StepProject  StepType = "project"
)

// ValidStepTypes are the allowed step types.
var ValidStepTypes = map[StepType]bool{
	StepVideo:    true,
	StepArticle:  true,
	StepQuiz:     true,
	StepExercise: true,
	StepProject:  true,
}

// Objectives holds step objectives. Generated plans carry either a single
// string or a list of strings; the original shape is kept on marshal.
type Objectives struct {
	Items []string
	list  bool
}

// NewObjectives returns list-shaped objectives.
func NewObjectives(items ...string) *Objectives {
	return &Objectives{Items: items, list: true}
}

// IsList reports whether the objectives were a JSON array.
func (o Objectives) IsList() bool { return o.list }

// String joins the objectives for display.
func (o Objectives) String() string {
	return strings.Join(o.Items, "; ")
}

func (o Objectives) MarshalJSON() ([]byte, error) {
	if o.list {
		items := o.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(strings.Join(o.Items, ""))
}

func (o *Objectives) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("objectives: %w", err)
		}
		o.Items, o.list = items, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("objectives: %w", err)
	}
	o.Items, o.list = []string{s}, false
	return nil
}

// Step is a single learning activity.
type Step struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Type          StepType    `json:"type"`
	Duration      string      `json:"duration"`
	URL           string      `json:"url,omitempty"`
	Completed     bool        `json:"completed"`
	Description   string      `json:"description,omitempty"`
	Objectives    *Objectives `json:"objectives,omitempty"`
	Resources     string      `json:"resources,omitempty"`
	ResourceTitle string      `json:"resourceTitle,omitempty"`
}

// Day groups the steps scheduled for one day. Step order is display and
// completion order.
type Day struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// Plan is a multi-day curriculum.
type Plan struct {
	Topic string `json:"topic"`
	Days  []Day  `json:"days"`
}

// StepCount returns the total and completed number of steps.
func (p Plan) StepCount() (total, completed int) {
	for _, d := range p.Days {
		for _, s := range d.Steps {
			total++
			if s.Completed {
				completed++
			}
		}
	}
	return total, completed
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := Plan{Topic: p.Topic}
	if p.Days == nil {
		return out
	}
	out.Days = make([]Day, len(p.Days))
	for i, d := range p.Days {
		out.Days[i] = Day{ID: d.ID, Title: d.Title}
		if d.Steps == nil {
			continue
		}
		out.Days[i].Steps = make([]Step, len(d.Steps))
		for j, s := range d.Steps {
			if s.Objectives != nil {
				obj := *s.Objectives
				obj.Items = append([]string(nil), s.Objectives.Items...)
				s.Objectives = &obj
			}
			out.Days[i].Steps[j] = s
		}
	}
	return out
}

// Validate checks the structural invariants of a generated plan: at least one
// day, unique day ids, step ids unique across the whole plan and known step
// types.
func (p Plan) Validate() error {
	if len(p.Days) == 0 {
		return fmt.Errorf("plan has no days")
	}
	days := make(map[string]bool, len(p.Days))
	steps := map[string]bool{}
	for i, d := range p.Days {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("days[%d]: id is required", i)
		}
		if days[d.ID] {
			return fmt.Errorf("days[%d]: duplicate day id %q", i, d.ID)
		}
		days[d.ID] = true
		for j, s := range d.Steps {
			if strings.TrimSpace(s.ID) == "" {
				return fmt.Errorf("days[%d].steps[%d]: id is required", i, j)
			}
			if steps[s.ID] {
				return fmt.Errorf("days[%d].steps[%d]: duplicate step id %q", i, j, s.ID)
			}
			steps[s.ID] = true
			if strings.TrimSpace(s.Title) == "" {
				return fmt.Errorf("days[%d].steps[%d]: title is required", i, j)
			}
			if !ValidStepTypes[s.Type] {
				return fmt.Errorf("days[%d].steps[%d]: unknown step type %q", i, j, s.Type)
			}
		}
	}
	return nil
}

// Pathway is a candidate focus area offered before full plan generation.
type Pathway struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	LearningGoal string `json:"learning_goal"`
}

// ValidatePathways checks that every pathway has an id and a title and that
// ids are unique.
func ValidatePathways(pathways []Pathway) error {
	if len(pathways) == 0 {
		return fmt.Errorf("no pathways")
	}
	seen := make(map[string]bool, len(pathways))
	for i, p := range pathways {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("pathways[%d]: id and title are required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("pathways[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
