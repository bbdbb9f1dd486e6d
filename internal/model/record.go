package model

// CurrentVersion is the version of the persisted blob layout.
const CurrentVersion = 1

// PlanRecord is the durable wrapper around a plan. Timestamps are epoch ms.
type PlanRecord struct {
	ID          string      `json:"id"`
	CreatedAt   int64       `json:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt"`
	UserProfile UserProfile `json:"userProfile"`
	Plan        Plan        `json:"plan"`
}

// LogEntry is a freeform note.
type LogEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Blob is the entire persisted unit. It is read and rewritten as a whole on
// every mutation.
type Blob struct {
	Version      int                   `json:"version"`
	Plans        map[string]PlanRecord `json:"plans"`
	ActivePlanID *string               `json:"activePlanId"`
	LogEntries   map[string]LogEntry   `json:"logEntries"`
}

// NewBlob returns the default, empty blob.
func NewBlob() Blob {
	return Blob{
		Version:    CurrentVersion,
		Plans:      map[string]PlanRecord{},
		LogEntries: map[string]LogEntry{},
	}
}

// ActiveID returns the active plan id or "" when none is set.
func (b Blob) ActiveID() string {
	if b.ActivePlanID == nil {
		return ""
	}
	return *b.ActivePlanID
}
