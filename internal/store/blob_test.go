package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/rcliao/learnpath/internal/model"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestClock() *testClock {
	return &testClock{t: time.UnixMilli(1_700_000_000_000)}
}

func newTestStore(t *testing.T) (*BlobStore, *testClock) {
	t.Helper()
	clock := newTestClock()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	s := NewBlobStore(b, WithClock(clock.Now))
	t.Cleanup(func() { s.Close() })
	return s, clock
}

// flakyBackend fails writes while failing is set.
type flakyBackend struct {
	*MemoryBackend
	failing bool
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.failing {
		return errors.New("quota exceeded")
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func samplePlan(topic string) model.Plan {
	return model.Plan{
		Topic: topic,
		Days: []model.Day{
			{ID: "day-1", Title: "Day 1: Foundations", Steps: []model.Step{
				{ID: "d1-s1", Title: "Intro video", Type: model.StepVideo, Duration: "15m", URL: "https://example.com/v"},
				{ID: "d1-s2", Title: "Core article", Type: model.StepArticle, Duration: "10m",
					Objectives: model.NewObjectives("read", "summarize")},
			}},
			{ID: "day-2", Title: "Day 2: Practice", Steps: []model.Step{
				{ID: "d2-s1", Title: "Exercise", Type: model.StepExercise, Duration: "30m", Description: "Write code"},
			}},
		},
	}
}

func sampleProfile(topic string) model.UserProfile {
	return model.UserProfile{Topic: topic, TimeCommitment: model.Time30Min, Level: model.LevelBeginner}
}

func TestSavePlanAndGetPlan(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	profile := sampleProfile("Go")
	plan := samplePlan("Go")
	id := s.SavePlan(ctx, profile, plan)

	rec, ok := s.GetPlan(ctx, id)
	if !ok {
		t.Fatalf("plan %s not found", id)
	}
	if !reflect.DeepEqual(rec.Plan, plan) {
		t.Errorf("plan mismatch:\n got %+v\nwant %+v", rec.Plan, plan)
	}
	if !reflect.DeepEqual(rec.UserProfile, profile) {
		t.Errorf("profile mismatch: got %+v", rec.UserProfile)
	}
	if rec.CreatedAt != clock.Now().UnixMilli() || rec.UpdatedAt != rec.CreatedAt {
		t.Errorf("timestamps = %d/%d, want both %d", rec.CreatedAt, rec.UpdatedAt, clock.Now().UnixMilli())
	}
	if got := s.GetActivePlanID(ctx); got != id {
		t.Errorf("active plan = %q, want %q", got, id)
	}
}

func TestGenerateIDFormat(t *testing.T) {
	s, clock := newTestStore(t)
	re := regexp.MustCompile(`^plan_(\d+)_[0-9a-z]{9}$`)

	id := s.GenerateID(PlanPrefix)
	m := re.FindStringSubmatch(id)
	if m == nil {
		t.Fatalf("id %q does not match %s", id, re)
	}
	if want := strconv.FormatInt(clock.Now().UnixMilli(), 10); m[1] != want {
		t.Errorf("timestamp part = %s, want %s", m[1], want)
	}

	if id2 := s.GenerateID(PlanPrefix); id2 == id {
		t.Errorf("expected distinct ids, got %s twice", id)
	}
	if !regexp.MustCompile(`^log_\d+_[0-9a-z]{9}$`).MatchString(s.GenerateID(LogPrefix)) {
		t.Error("log id format mismatch")
	}
}

func TestUpdatePlanLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	id := s.SavePlan(ctx, sampleProfile("Go"), samplePlan("Go"))
	first, _ := s.GetPlan(ctx, id)

	p1 := samplePlan("Go")
	p1.Days[0].Steps[0].Completed = true
	clock.Advance(time.Second)
	s.UpdatePlan(ctx, id, p1)
	mid, _ := s.GetPlan(ctx, id)

	p2 := samplePlan("Go")
	p2.Days[1].Steps[0].Completed = true
	clock.Advance(time.Second)
	s.UpdatePlan(ctx, id, p2)
	last, _ := s.GetPlan(ctx, id)

	if !reflect.DeepEqual(last.Plan, p2) {
		t.Errorf("expected last write to win, got %+v", last.Plan)
	}
	if !(first.UpdatedAt <= mid.UpdatedAt && mid.UpdatedAt <= last.UpdatedAt) {
		t.Errorf("updatedAt decreased: %d, %d, %d", first.UpdatedAt, mid.UpdatedAt, last.UpdatedAt)
	}
	if last.CreatedAt != first.CreatedAt {
		t.Errorf("createdAt changed: %d -> %d", first.CreatedAt, last.CreatedAt)
	}
}

func TestUpdatedAtNeverDecreasesWhenClockGoesBack(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	id := s.SavePlan(ctx, sampleProfile("Go"), samplePlan("Go"))
	before, _ := s.GetPlan(ctx, id)
	clock.Advance(-time.Hour)
	s.UpdatePlan(ctx, id, samplePlan("Go"))
	after, _ := s.GetPlan(ctx, id)
	if after.UpdatedAt < before.UpdatedAt {
		t.Errorf("updatedAt went backwards: %d -> %d", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestGetAllPlansOrdering(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	a := s.SavePlan(ctx, sampleProfile("A"), samplePlan("A"))
	clock.Advance(time.Second)
	b := s.SavePlan(ctx, sampleProfile("B"), samplePlan("B"))

	assertOrder(t, s.GetAllPlans(ctx), b, a)

	clock.Advance(time.Second)
	s.UpdatePlan(ctx, a, samplePlan("A"))
	assertOrder(t, s.GetAllPlans(ctx), a, b)

	clock.Advance(time.Second)
	c := s.SavePlan(ctx, sampleProfile("C"), samplePlan("C"))
	assertOrder(t, s.GetAllPlans(ctx), c, a, b)
}

func TestGetAllPlansTiesAreDeterministic(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for i := 0; i < 5; i++ {
		s.SavePlan(ctx, sampleProfile("same"), samplePlan("same"))
	}
	first := s.GetAllPlans(ctx)
	for i := 0; i < 5; i++ {
		again := s.GetAllPlans(ctx)
		for j := range first {
			if first[j].ID != again[j].ID {
				t.Fatalf("ordering changed between calls at %d: %s vs %s", j, first[j].ID, again[j].ID)
			}
		}
	}
}

func assertOrder(t *testing.T, recs []model.PlanRecord, ids ...string) {
	t.Helper()
	if len(recs) != len(ids) {
		t.Fatalf("expected %d plans, got %d", len(ids), len(recs))
	}
	for i, id := range ids {
		if recs[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, recs[i].ID, id)
		}
	}
}

func TestUpdateUnknownIDsAreNoops(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := NewBlobStore(mem)

	s.SavePlan(ctx, sampleProfile("Go"), samplePlan("Go"))
	s.SaveLogEntry(ctx, model.LogEntry{Title: "note", Body: "body"})
	before, _, _ := mem.Get(ctx, DataKey)

	s.UpdatePlan(ctx, "plan_missing", samplePlan("other"))
	title := "changed"
	s.UpdateLogEntry(ctx, "log_missing", LogUpdate{Title: &title})
	s.DeleteLogEntry(ctx, "log_missing")

	after, _, _ := mem.Get(ctx, DataKey)
	if string(before) != string(after) {
		t.Errorf("store changed after no-op updates:\nbefore %s\nafter  %s", before, after)
	}
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	s := NewBlobStore(NewMemoryBackend())
	blob := s.Load(context.Background())
	if !reflect.DeepEqual(blob, model.NewBlob()) {
		t.Errorf("expected default blob, got %+v", blob)
	}
}

func TestLoadCorruptReturnsDefault(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	mem.Set(ctx, DataKey, []byte("{not json"))
	s := NewBlobStore(mem)

	blob := s.Load(ctx)
	if !reflect.DeepEqual(blob, model.NewBlob()) {
		t.Errorf("expected default blob, got %+v", blob)
	}
	if s.HasPlans(ctx) {
		t.Error("corrupt store should report no plans")
	}
}

func TestLoadMigratesMissingLogEntries(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	mem.Set(ctx, DataKey, []byte(`{"version":0,"plans":{},"activePlanId":null}`))
	s := NewBlobStore(mem)

	blob := s.Load(ctx)
	if blob.Version != model.CurrentVersion {
		t.Errorf("version = %d, want %d", blob.Version, model.CurrentVersion)
	}
	if blob.LogEntries == nil {
		t.Error("expected logEntries map to be created")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	active := "plan_1_abc"
	blob := model.Blob{
		Version: model.CurrentVersion,
		Plans: map[string]model.PlanRecord{
			active: {ID: active, CreatedAt: 1, UpdatedAt: 2, UserProfile: sampleProfile("Go"), Plan: samplePlan("Go")},
		},
		ActivePlanID: &active,
		LogEntries: map[string]model.LogEntry{
			"log_1_abc": {ID: "log_1_abc", Title: "t", Body: "b", CreatedAt: 3, UpdatedAt: 4},
		},
	}
	s.Save(ctx, blob)
	if got := s.Load(ctx); !reflect.DeepEqual(got, blob) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, blob)
	}

	empty := model.NewBlob()
	s.Save(ctx, empty)
	if got := s.Load(ctx); !reflect.DeepEqual(got, empty) {
		t.Errorf("empty round trip mismatch: %+v", got)
	}
}

func TestWriteFailureIsSwallowedAndReported(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: NewMemoryBackend(), failing: true}
	s := NewBlobStore(backend)

	id := s.SavePlan(ctx, sampleProfile("Go"), samplePlan("Go"))
	if id == "" {
		t.Fatal("expected an id even when the write fails")
	}
	if s.WriteErr() == nil {
		t.Fatal("expected WriteErr after failed write")
	}
	if s.HasPlans(ctx) {
		t.Error("failed write must not be visible after reload")
	}

	backend.failing = false
	s.SavePlan(ctx, sampleProfile("Go"), samplePlan("Go"))
	if err := s.WriteErr(); err != nil {
		t.Errorf("expected WriteErr cleared after success, got %v", err)
	}
}

func TestSetActivePlan(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	a := s.SavePlan(ctx, sampleProfile("A"), samplePlan("A"))
	b := s.SavePlan(ctx, sampleProfile("B"), samplePlan("B"))
	if s.GetActivePlanID(ctx) != b {
		t.Fatalf("expected newest plan active")
	}
	s.SetActivePlan(ctx, a)
	if got := s.GetActivePlanID(ctx); got != a {
		t.Errorf("active = %s, want %s", got, a)
	}
	s.SetActivePlan(ctx, "")
	if got := s.GetActivePlanID(ctx); got != "" {
		t.Errorf("expected no active plan, got %s", got)
	}
}

func TestLogEntryCRUD(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	id := s.SaveLogEntry(ctx, model.LogEntry{Title: "  ", Body: "first thoughts"})
	e, ok := s.GetLogEntry(ctx, id)
	if !ok {
		t.Fatalf("entry %s not found", id)
	}
	if e.Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", e.Title)
	}
	created := e.CreatedAt

	clock.Advance(time.Minute)
	body := "revised"
	s.UpdateLogEntry(ctx, id, LogUpdate{Body: &body})
	e, _ = s.GetLogEntry(ctx, id)
	if e.Body != "revised" || e.Title != "Untitled" {
		t.Errorf("merge failed: %+v", e)
	}
	if e.CreatedAt != created || e.UpdatedAt <= created {
		t.Errorf("timestamps after update: created %d updated %d", e.CreatedAt, e.UpdatedAt)
	}

	clock.Advance(time.Minute)
	other := s.SaveLogEntry(ctx, model.LogEntry{Title: "second"})
	all := s.GetAllLogEntries(ctx)
	if len(all) != 2 || all[0].ID != other || all[1].ID != id {
		t.Errorf("unexpected ordering: %+v", all)
	}

	s.DeleteLogEntry(ctx, id)
	if _, ok := s.GetLogEntry(ctx, id); ok {
		t.Error("expected entry to be deleted")
	}
	if n := len(s.GetAllLogEntries(ctx)); n != 1 {
		t.Errorf("expected 1 entry left, got %d", n)
	}
}

func TestSaveLogEntryKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	id := s.SaveLogEntry(ctx, model.LogEntry{ID: "log_fixed", Title: "t", CreatedAt: 42})
	e, _ := s.GetLogEntry(ctx, id)
	if id != "log_fixed" {
		t.Errorf("id = %s, want log_fixed", id)
	}
	if e.CreatedAt != 42 || e.UpdatedAt != clock.Now().UnixMilli() {
		t.Errorf("timestamps = %d/%d", e.CreatedAt, e.UpdatedAt)
	}
}
