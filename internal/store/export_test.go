package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rcliao/learnpath/internal/model"
)

func TestExportImportMerge(t *testing.T) {
	ctx := context.Background()
	src, clock := newTestStore(t)
	a := src.SavePlan(ctx, sampleProfile("A"), samplePlan("A"))
	src.SaveLogEntry(ctx, model.LogEntry{Title: "note"})
	exported := src.Export(ctx)

	dst, _ := newTestStore(t)
	res, err := dst.Import(ctx, exported, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Plans != 1 || res.LogEntries != 1 || res.Skipped != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if dst.GetActivePlanID(ctx) != a {
		t.Errorf("expected active plan to carry over")
	}

	// Re-importing the same data skips everything.
	res, err = dst.Import(ctx, exported, false)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Skipped != 2 || res.Plans != 0 {
		t.Errorf("expected all skipped, got %+v", res)
	}

	// A newer copy wins.
	clock.Advance(time.Hour)
	p := samplePlan("A")
	p.Days[0].Steps[0].Completed = true
	src.UpdatePlan(ctx, a, p)
	res, _ = dst.Import(ctx, src.Export(ctx), false)
	if res.Plans != 1 {
		t.Errorf("expected newer plan imported, got %+v", res)
	}
	rec, _ := dst.GetPlan(ctx, a)
	if !rec.Plan.Days[0].Steps[0].Completed {
		t.Error("expected newer plan content")
	}
}

func TestImportReplace(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.SavePlan(ctx, sampleProfile("old"), samplePlan("old"))

	res, err := s.Import(ctx, model.NewBlob(), true)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Plans != 0 || s.HasPlans(ctx) {
		t.Errorf("expected store replaced with empty blob, result %+v", res)
	}
}

func TestImportNoopIgnoresEarlierWriteFailure(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	s := NewBlobStore(backend)
	s.SavePlan(ctx, sampleProfile("Go"), samplePlan("Go"))
	exported := s.Export(ctx)

	backend.failing = true
	s.SaveLogEntry(ctx, model.LogEntry{Title: "lost"})
	if s.WriteErr() == nil {
		t.Fatal("expected a write failure")
	}

	res, err := s.Import(ctx, exported, false)
	if err != nil {
		t.Fatalf("import with nothing to write: %v", err)
	}
	if res.Skipped != 1 || res.Plans != 0 {
		t.Errorf("unexpected result %+v", res)
	}

	if _, err := s.Import(ctx, exported, true); err == nil {
		t.Error("replace should report the failed write")
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	tests := []struct {
		name string
		blob model.Blob
	}{
		{"key mismatch", model.Blob{Plans: map[string]model.PlanRecord{
			"plan_a": {ID: "plan_b", Plan: samplePlan("x")},
		}}},
		{"invalid plan", model.Blob{Plans: map[string]model.PlanRecord{
			"plan_a": {ID: "plan_a", Plan: model.Plan{Topic: "x"}},
		}}},
		{"future version", model.Blob{Version: model.CurrentVersion + 1}},
		{"dangling active", func() model.Blob {
			id := "plan_missing"
			return model.Blob{ActivePlanID: &id}
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Import(ctx, tt.blob, false)
			if !errors.Is(err, ErrInvalidImport) {
				t.Errorf("expected ErrInvalidImport, got %v", err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p := samplePlan("Go")
	p.Days[0].Steps[0].Completed = true
	id := s.SavePlan(ctx, sampleProfile("Go"), p)
	s.SaveLogEntry(ctx, model.LogEntry{Title: "n"})

	st := s.Stats(ctx, "sqlite")
	if st.Plans != 1 || st.LogEntries != 1 {
		t.Errorf("counts = %d/%d", st.Plans, st.LogEntries)
	}
	if st.TotalSteps != 3 || st.CompletedSteps != 1 {
		t.Errorf("steps = %d/%d, want 3/1", st.TotalSteps, st.CompletedSteps)
	}
	if st.ActivePlanID != id || st.Backend != "sqlite" || st.BlobBytes == 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}
