package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func validPlan() Plan {
	return Plan{
		Topic: "Go",
		Days: []Day{
			{ID: "day-1", Title: "Day 1", Steps: []Step{
				{ID: "s1", Title: "Tour", Type: StepArticle, Duration: "20m"},
				{ID: "s2", Title: "Quiz", Type: StepQuiz, Duration: "5m"},
			}},
			{ID: "day-2", Title: "Day 2", Steps: []Step{
				{ID: "s3", Title: "Build", Type: StepProject, Duration: "1h", Completed: true},
			}},
		},
	}
}

func TestPlanValidate(t *testing.T) {
	if err := validPlan().Validate(); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Plan)
		want   string
	}{
		{"no days", func(p *Plan) { p.Days = nil }, "no days"},
		{"duplicate day", func(p *Plan) { p.Days[1].ID = "day-1" }, "duplicate day id"},
		{"duplicate step across days", func(p *Plan) { p.Days[1].Steps[0].ID = "s1" }, "duplicate step id"},
		{"missing step title", func(p *Plan) { p.Days[0].Steps[0].Title = " " }, "title is required"},
		{"unknown type", func(p *Plan) { p.Days[0].Steps[1].Type = "podcast" }, "unknown step type"},
		{"missing day id", func(p *Plan) { p.Days[0].ID = "" }, "id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(&p)
			err := p.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestPlanCloneIsDeep(t *testing.T) {
	p := validPlan()
	p.Days[0].Steps[0].Objectives = NewObjectives("a", "b")
	c := p.Clone()

	c.Days[0].Steps[0].Completed = true
	c.Days[0].Steps[0].Objectives.Items[0] = "changed"
	c.Days[1].Title = "renamed"

	if p.Days[0].Steps[0].Completed {
		t.Error("clone shares step storage")
	}
	if p.Days[0].Steps[0].Objectives.Items[0] != "a" {
		t.Error("clone shares objectives")
	}
	if p.Days[1].Title != "Day 2" {
		t.Error("clone shares day storage")
	}
}

func TestStepCount(t *testing.T) {
	total, done := validPlan().StepCount()
	if total != 3 || done != 1 {
		t.Errorf("StepCount() = %d/%d, want 3/1", total, done)
	}
}

func TestObjectivesKeepShape(t *testing.T) {
	tests := []struct {
		in     string
		isList bool
		str    string
	}{
		{`"Learn the basics"`, false, "Learn the basics"},
		{`["one","two"]`, true, "one; two"},
	}
	for _, tt := range tests {
		var o Objectives
		if err := json.Unmarshal([]byte(tt.in), &o); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if o.IsList() != tt.isList || o.String() != tt.str {
			t.Errorf("%s: list=%v str=%q", tt.in, o.IsList(), o.String())
		}
		out, err := json.Marshal(o)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != tt.in {
			t.Errorf("marshal = %s, want %s", out, tt.in)
		}
	}

	var o Objectives
	if err := json.Unmarshal([]byte(`42`), &o); err == nil {
		t.Error("expected error for numeric objectives")
	}
}

func TestValidatePathways(t *testing.T) {
	ok := []Pathway{{ID: "p1", Title: "Web"}, {ID: "p2", Title: "CLI"}}
	if err := ValidatePathways(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePathways(nil); err == nil {
		t.Error("expected error for empty pathways")
	}
	if err := ValidatePathways([]Pathway{{ID: "p1", Title: "a"}, {ID: "p1", Title: "b"}}); err == nil {
		t.Error("expected error for duplicate ids")
	}
}

func TestProfileNormalizeAndValidate(t *testing.T) {
	p := UserProfile{Topic: "  Go  ", Level: "Advanced"}.Normalize()
	if p.Topic != "Go" || p.Level != LevelAdvanced || p.TimeCommitment != DefaultTimeCommitment {
		t.Errorf("Normalize() = %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (UserProfile{Topic: " "}).Normalize().Validate(); err == nil {
		t.Error("expected error for blank topic")
	}
	if _, err := ParseTimeCommitment("3hr"); err == nil {
		t.Error("expected error for unknown commitment")
	}
	if l, _ := ParseLevel(""); l != DefaultLevel {
		t.Errorf("ParseLevel(\"\") = %s", l)
	}
}
