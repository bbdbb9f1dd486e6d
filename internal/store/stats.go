package store

import (
	"context"
	"encoding/json"
)

// Stats holds storage statistics.
type Stats struct {
	Backend        string      `json:"backend"`
	Version        int         `json:"version"`
	BlobBytes      int         `json:"blob_bytes"`
	Plans          int         `json:"plans"`
	LogEntries     int         `json:"log_entries"`
	ActivePlanID   string      `json:"active_plan_id,omitempty"`
	TotalSteps     int         `json:"total_steps"`
	CompletedSteps int         `json:"completed_steps"`
	PerPlan        []PlanStats `json:"per_plan"`
}

// PlanStats holds per-plan step counts.
type PlanStats struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Steps     int    `json:"steps"`
	Completed int    `json:"completed"`
}

// Stats returns counts over the stored blob. backendName is reported as given.
func (s *BlobStore) Stats(ctx context.Context, backendName string) Stats {
	blob := s.Load(ctx)
	st := Stats{
		Backend:      backendName,
		Version:      blob.Version,
		Plans:        len(blob.Plans),
		LogEntries:   len(blob.LogEntries),
		ActivePlanID: blob.ActiveID(),
	}
	if raw, err := json.Marshal(blob); err == nil {
		st.BlobBytes = len(raw)
	}

	for _, rec := range s.GetAllPlans(ctx) {
		total, done := rec.Plan.StepCount()
		st.TotalSteps += total
		st.CompletedSteps += done
		st.PerPlan = append(st.PerPlan, PlanStats{
			ID:        rec.ID,
			Topic:     rec.Plan.Topic,
			Steps:     total,
			Completed: done,
		})
	}
	return st
}
