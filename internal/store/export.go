package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/learnpath/internal/model"
)

// ErrInvalidImport is returned when an imported blob is not well formed.
var ErrInvalidImport = errors.New("invalid import")

// ImportResult reports how many records an import wrote.
type ImportResult struct {
	Plans      int `json:"plans"`
	LogEntries int `json:"log_entries"`
	Skipped    int `json:"skipped"`
}

// Export returns the whole persisted blob.
func (s *BlobStore) Export(ctx context.Context) model.Blob {
	return s.Load(ctx)
}

// Import stores records from an export. With replace the stored blob is
// swapped wholesale; otherwise records are merged by id and the copy with
// the newer updatedAt wins.
func (s *BlobStore) Import(ctx context.Context, in model.Blob, replace bool) (ImportResult, error) {
	in = migrate(in)
	if err := validateImport(in); err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	var wrote bool
	s.mutate(ctx, func(b *model.Blob) bool {
		if replace {
			*b = in
			res.Plans, res.LogEntries = len(in.Plans), len(in.LogEntries)
			wrote = true
			return true
		}
		for id, rec := range in.Plans {
			if cur, ok := b.Plans[id]; ok && cur.UpdatedAt >= rec.UpdatedAt {
				res.Skipped++
				continue
			}
			b.Plans[id] = rec
			res.Plans++
		}
		for id, e := range in.LogEntries {
			if cur, ok := b.LogEntries[id]; ok && cur.UpdatedAt >= e.UpdatedAt {
				res.Skipped++
				continue
			}
			b.LogEntries[id] = e
			res.LogEntries++
		}
		if b.ActivePlanID == nil && in.ActivePlanID != nil {
			b.ActivePlanID = in.ActivePlanID
		}
		wrote = res.Plans+res.LogEntries > 0
		return wrote
	})
	if !wrote {
		return res, nil
	}
	if err := s.WriteErr(); err != nil {
		return res, fmt.Errorf("import: %w", err)
	}
	return res, nil
}

func validateImport(b model.Blob) error {
	if b.Version > model.CurrentVersion {
		return fmt.Errorf("%w: version %d is newer than supported %d", ErrInvalidImport, b.Version, model.CurrentVersion)
	}
	for id, rec := range b.Plans {
		if rec.ID != id {
			return fmt.Errorf("%w: plan key %q does not match id %q", ErrInvalidImport, id, rec.ID)
		}
		if err := rec.Plan.Validate(); err != nil {
			return fmt.Errorf("%w: plan %s: %v", ErrInvalidImport, id, err)
		}
	}
	for id, e := range b.LogEntries {
		if e.ID != id {
			return fmt.Errorf("%w: log key %q does not match id %q", ErrInvalidImport, id, e.ID)
		}
	}
	if id := b.ActiveID(); id != "" {
		if _, ok := b.Plans[id]; !ok {
			return fmt.Errorf("%w: active plan %q not present", ErrInvalidImport, id)
		}
	}
	return nil
}
