package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rcliao/learnpath/internal/model"
)

// Hit kinds.
const (
	HitStep = "step"
	HitLog  = "log"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("query is required")

// SearchParams holds parameters for searching plans and log entries.
type SearchParams struct {
	Query string
	Kind  string // HitStep, HitLog or "" for both
	Limit int
}

// SearchHit is a plan step or log entry matching every query term.
type SearchHit struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"` // plan id for steps, entry id for log entries
	DayID     string `json:"dayId,omitempty"`
	StepID    string `json:"stepId,omitempty"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet,omitempty"`
	Line      int    `json:"line,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Search finds steps and log entries whose text contains all terms of the
// query, case-insensitively. Hits from more recently updated records come
// first; steps keep plan order within a plan.
func (s *BlobStore) Search(ctx context.Context, p SearchParams) ([]SearchHit, error) {
	terms := strings.Fields(strings.ToLower(p.Query))
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var hits []SearchHit
	if p.Kind == "" || p.Kind == HitStep {
		for _, rec := range s.GetAllPlans(ctx) {
			hits = append(hits, searchPlan(rec, terms)...)
		}
	}
	if p.Kind == "" || p.Kind == HitLog {
		for _, e := range s.GetAllLogEntries(ctx) {
			if h, ok := searchLog(e, terms); ok {
				hits = append(hits, h)
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].UpdatedAt > hits[j].UpdatedAt })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func searchPlan(rec model.PlanRecord, terms []string) []SearchHit {
	var hits []SearchHit
	for _, d := range rec.Plan.Days {
		for _, st := range d.Steps {
			fields := []string{st.Title, st.Description, st.ResourceTitle, string(st.Type), rec.Plan.Topic}
			if st.Objectives != nil {
				fields = append(fields, st.Objectives.Items...)
			}
			if !matchAll(strings.ToLower(strings.Join(fields, "\n")), terms) {
				continue
			}
			hits = append(hits, SearchHit{
				Kind:      HitStep,
				ID:        rec.ID,
				DayID:     d.ID,
				StepID:    st.ID,
				Title:     st.Title,
				Snippet:   st.Description,
				UpdatedAt: rec.UpdatedAt,
			})
		}
	}
	return hits
}

func searchLog(e model.LogEntry, terms []string) (SearchHit, bool) {
	if !matchAll(strings.ToLower(e.Title+"\n"+e.Body), terms) {
		return SearchHit{}, false
	}
	h := SearchHit{Kind: HitLog, ID: e.ID, Title: e.Title, UpdatedAt: e.UpdatedAt}
	for _, sec := range sections(e.Body) {
		if matchAny(strings.ToLower(sec.text), terms) {
			h.Snippet, h.Line = sec.text, sec.line
			break
		}
	}
	return h, true
}

func matchAll(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

func matchAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

const maxSnippet = 240

// section is a paragraph or headed block of a log body.
type section struct {
	text string
	line int // 1-based first line
}

// sections splits markdown text on headings and blank lines. Long sections
// are cut to maxSnippet characters.
func sections(text string) []section {
	lines := strings.Split(text, "\n")
	var out []section
	var cur []string
	start := 1

	flush := func(next int) {
		t := strings.TrimSpace(strings.Join(cur, "\n"))
		if t != "" {
			if r := []rune(t); len(r) > maxSnippet {
				t = string(r[:maxSnippet]) + "…"
			}
			out = append(out, section{text: t, line: start})
		}
		cur = nil
		start = next
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush(i + 2)
			continue
		case strings.HasPrefix(trimmed, "#") && len(cur) > 0:
			flush(i + 1)
		}
		if len(cur) == 0 {
			start = i + 1
		}
		cur = append(cur, line)
	}
	flush(len(lines) + 1)
	return out
}
