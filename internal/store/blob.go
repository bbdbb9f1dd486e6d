package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
)

const (
	idAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
	idSuffixLength = 9
	untitled       = "Untitled"
)

// BlobStore implements Store by reading and rewriting the whole blob on
// every mutation. It assumes a single writer process.
type BlobStore struct {
	backend Backend
	key     string
	now     func() time.Time
	log     *logger.Logger

	mu       sync.Mutex
	entropy  *rand.Rand
	writeErr error
}

// Option customizes a BlobStore.
type Option func(*BlobStore)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *BlobStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used to report masked load and write failures.
func WithLogger(log *logger.Logger) Option {
	return func(s *BlobStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithKey overrides the backend key holding the blob.
func WithKey(key string) Option {
	return func(s *BlobStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewBlobStore wraps a backend.
func NewBlobStore(backend Backend, opts ...Option) *BlobStore {
	s := &BlobStore{
		backend: backend,
		key:     DataKey,
		now:     time.Now,
		log:     logger.Nop(),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BlobStore) nowMillis() int64 {
	return s.now().UnixMilli()
}

// GenerateID produces "{prefix}_{epochMs}_{suffix}" with a random base36
// suffix. Uniqueness is probabilistic.
func (s *BlobStore) GenerateID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateID(prefix)
}

func (s *BlobStore) generateID(prefix string) string {
	var b strings.Builder
	b.Grow(idSuffixLength)
	for i := 0; i < idSuffixLength; i++ {
		b.WriteByte(idAlphabet[s.entropy.Intn(len(idAlphabet))])
	}
	return fmt.Sprintf("%s_%d_%s", prefix, s.nowMillis(), b.String())
}

func (s *BlobStore) Load(ctx context.Context) model.Blob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *BlobStore) load(ctx context.Context) model.Blob {
	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("load stored data failed, using empty data", "key", s.key, "error", err)
		return model.NewBlob()
	}
	if !found || len(raw) == 0 {
		return model.NewBlob()
	}

	var blob model.Blob
	if err := json.Unmarshal(raw, &blob); err != nil {
		s.log.Warn("stored data is corrupt, using empty data", "key", s.key, "bytes", len(raw), "error", err)
		return model.NewBlob()
	}
	return migrate(blob)
}

// migrate brings older blobs up to CurrentVersion. No structural migrations
// exist yet beyond filling in missing maps.
func migrate(blob model.Blob) model.Blob {
	if blob.Version < model.CurrentVersion {
		blob.Version = model.CurrentVersion
	}
	if blob.Plans == nil {
		blob.Plans = map[string]model.PlanRecord{}
	}
	if blob.LogEntries == nil {
		blob.LogEntries = map[string]model.LogEntry{}
	}
	if blob.ActivePlanID != nil && *blob.ActivePlanID == "" {
		blob.ActivePlanID = nil
	}
	return blob
}

func (s *BlobStore) Save(ctx context.Context, blob model.Blob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(ctx, blob)
}

func (s *BlobStore) save(ctx context.Context, blob model.Blob) {
	raw, err := json.Marshal(blob)
	if err == nil {
		err = s.backend.Set(ctx, s.key, raw)
	}
	if err != nil {
		s.writeErr = err
		s.log.Error("save data failed, changes are not durable", "key", s.key, "error", err)
		return
	}
	s.writeErr = nil
}

// WriteErr returns the last write failure, or nil once a write succeeds.
func (s *BlobStore) WriteErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

// mutate runs fn against a freshly loaded blob and saves it when fn reports
// a change.
func (s *BlobStore) mutate(ctx context.Context, fn func(*model.Blob) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob := s.load(ctx)
	if fn(&blob) {
		s.save(ctx, blob)
	}
}

func (s *BlobStore) SavePlan(ctx context.Context, profile model.UserProfile, plan model.Plan) string {
	var id string
	s.mutate(ctx, func(b *model.Blob) bool {
		id = s.generateID(PlanPrefix)
		now := s.nowMillis()
		b.Plans[id] = model.PlanRecord{
			ID:          id,
			CreatedAt:   now,
			UpdatedAt:   now,
			UserProfile: profile,
			Plan:        plan.Clone(),
		}
		active := id
		b.ActivePlanID = &active
		return true
	})
	s.log.Info("plan saved", "plan_id", id, "topic", plan.Topic)
	return id
}

func (s *BlobStore) UpdatePlan(ctx context.Context, id string, plan model.Plan) {
	s.mutate(ctx, func(b *model.Blob) bool {
		rec, ok := b.Plans[id]
		if !ok {
			s.log.Debug("update of unknown plan ignored", "plan_id", id)
			return false
		}
		rec.Plan = plan.Clone()
		rec.UpdatedAt = max(s.nowMillis(), rec.UpdatedAt)
		b.Plans[id] = rec
		return true
	})
}

func (s *BlobStore) GetPlan(ctx context.Context, id string) (model.PlanRecord, bool) {
	rec, ok := s.Load(ctx).Plans[id]
	return rec, ok
}

func (s *BlobStore) GetAllPlans(ctx context.Context) []model.PlanRecord {
	blob := s.Load(ctx)
	out := make([]model.PlanRecord, 0, len(blob.Plans))
	for _, rec := range blob.Plans {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].UpdatedAt, out[j].UpdatedAt, out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s *BlobStore) HasPlans(ctx context.Context) bool {
	return len(s.Load(ctx).Plans) > 0
}

func (s *BlobStore) SetActivePlan(ctx context.Context, id string) {
	s.mutate(ctx, func(b *model.Blob) bool {
		if id == "" {
			b.ActivePlanID = nil
			return true
		}
		active := id
		b.ActivePlanID = &active
		return true
	})
}

func (s *BlobStore) GetActivePlanID(ctx context.Context) string {
	return s.Load(ctx).ActiveID()
}

func (s *BlobStore) SaveLogEntry(ctx context.Context, entry model.LogEntry) string {
	var id string
	s.mutate(ctx, func(b *model.Blob) bool {
		id = entry.ID
		if id == "" {
			id = s.generateID(LogPrefix)
		}
		now := s.nowMillis()
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = untitled
		}
		createdAt := entry.CreatedAt
		if createdAt == 0 {
			createdAt = now
		}
		b.LogEntries[id] = model.LogEntry{
			ID:        id,
			Title:     title,
			Body:      entry.Body,
			CreatedAt: createdAt,
			UpdatedAt: now,
		}
		return true
	})
	return id
}

func (s *BlobStore) UpdateLogEntry(ctx context.Context, id string, u LogUpdate) {
	s.mutate(ctx, func(b *model.Blob) bool {
		entry, ok := b.LogEntries[id]
		if !ok {
			return false
		}
		if u.Title != nil {
			entry.Title = *u.Title
		}
		if u.Body != nil {
			entry.Body = *u.Body
		}
		entry.UpdatedAt = max(s.nowMillis(), entry.UpdatedAt)
		b.LogEntries[id] = entry
		return true
	})
}

func (s *BlobStore) DeleteLogEntry(ctx context.Context, id string) {
	s.mutate(ctx, func(b *model.Blob) bool {
		if _, ok := b.LogEntries[id]; !ok {
			return false
		}
		delete(b.LogEntries, id)
		return true
	})
}

func (s *BlobStore) GetLogEntry(ctx context.Context, id string) (model.LogEntry, bool) {
	e, ok := s.Load(ctx).LogEntries[id]
	return e, ok
}

func (s *BlobStore) GetAllLogEntries(ctx context.Context) []model.LogEntry {
	blob := s.Load(ctx)
	out := make([]model.LogEntry, 0, len(blob.LogEntries))
	for _, e := range blob.LogEntries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].UpdatedAt, out[j].UpdatedAt, out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s *BlobStore) Close() error {
	return s.backend.Close()
}

// newerFirst orders by updatedAt desc, then createdAt desc, then id desc so
// listings are deterministic when timestamps tie.
func newerFirst(updA, updB, crA, crB int64, idA, idB string) bool {
	if updA != updB {
		return updA > updB
	}
	if crA != crB {
		return crA > crB
	}
	return idA > idB
}
