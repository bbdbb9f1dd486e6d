// Package store provides the plan and note persistence layer. All state is a
// single versioned blob kept under one key in a key/value backend.
package store

import (
	"context"

	"github.com/rcliao/learnpath/internal/model"
)

// DataKey is the backend key holding the serialized blob.
const DataKey = "learning-companion-data"

// Id prefixes for generated identifiers.
const (
	PlanPrefix = "plan"
	LogPrefix  = "log"
)

// LogUpdate holds the fields to merge into an existing log entry. Nil fields
// are left unchanged.
type LogUpdate struct {
	Title *string
	Body  *string
}

// Store defines the persistence interface used by the rest of the app.
type Store interface {
	// Load returns the persisted blob, or the default blob when nothing usable
	// is stored. It never fails.
	Load(ctx context.Context) model.Blob

	// Save writes the whole blob. Write failures are logged and remembered
	// (see WriteErr) but not returned.
	Save(ctx context.Context, blob model.Blob)

	// GenerateID returns "{prefix}_{epochMs}_{random base36}".
	GenerateID(prefix string) string

	// SavePlan stores a new plan record, makes it active and returns its id.
	SavePlan(ctx context.Context, profile model.UserProfile, plan model.Plan) string

	// UpdatePlan replaces the plan of an existing record. Unknown ids are ignored.
	UpdatePlan(ctx context.Context, id string, plan model.Plan)

	GetPlan(ctx context.Context, id string) (model.PlanRecord, bool)

	// GetAllPlans lists plan records, most recently updated first.
	GetAllPlans(ctx context.Context) []model.PlanRecord

	HasPlans(ctx context.Context) bool
	SetActivePlan(ctx context.Context, id string)

	// GetActivePlanID returns "" when no plan is active.
	GetActivePlanID(ctx context.Context) string

	// SaveLogEntry creates or overwrites a log entry and returns its id.
	SaveLogEntry(ctx context.Context, entry model.LogEntry) string

	// UpdateLogEntry merges fields into an existing entry. Unknown ids are ignored.
	UpdateLogEntry(ctx context.Context, id string, u LogUpdate)

	DeleteLogEntry(ctx context.Context, id string)
	GetLogEntry(ctx context.Context, id string) (model.LogEntry, bool)

	// GetAllLogEntries lists entries, most recently updated first.
	GetAllLogEntries(ctx context.Context) []model.LogEntry

	// WriteErr returns the error of the last failed write, or nil when the
	// most recent write succeeded.
	WriteErr() error

	// Close closes the underlying backend.
	Close() error
}
