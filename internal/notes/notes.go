// Package notes implements the learning log editor: a list of freeform
// entries with a single draft that is saved periodically.
package notes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/store"
)

// AutosaveInterval is how often a UI should call Save.
const AutosaveInterval = 2 * time.Second

const untitled = "Untitled"

// Editor holds the draft for the selected entry. An empty selection edits a
// new, unsaved entry.
type Editor struct {
	store store.Store

	mu       sync.Mutex
	selected string
	title    string
	body     string
	dirty    bool
}

// NewEditor returns an editor with a blank new draft.
func NewEditor(st store.Store) *Editor {
	return &Editor{store: st}
}

// Entries lists stored entries, most recently updated first.
func (e *Editor) Entries(ctx context.Context) []model.LogEntry {
	return e.store.GetAllLogEntries(ctx)
}

// Select saves the current draft and loads the entry with id. It reports
// false when the entry does not exist, in which case a blank draft is kept.
func (e *Editor) Select(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.save(ctx)
	entry, ok := e.store.GetLogEntry(ctx, id)
	if !ok {
		e.reset("")
		return false
	}
	e.selected = id
	e.title, e.body, e.dirty = entry.Title, entry.Body, false
	return true
}

// New saves the current draft and starts a blank one.
func (e *Editor) New(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.save(ctx)
	e.reset("")
}

func (e *Editor) reset(id string) {
	e.selected, e.title, e.body, e.dirty = id, "", "", false
}

func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.title != title {
		e.title, e.dirty = title, true
	}
}

func (e *Editor) SetBody(body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.body != body {
		e.body, e.dirty = body, true
	}
}

// Save writes a dirty draft. A new draft is only created once its title or
// body has content. It reports whether anything was written.
func (e *Editor) Save(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.save(ctx)
}

func (e *Editor) save(ctx context.Context) bool {
	if !e.dirty {
		return false
	}
	title := strings.TrimSpace(e.title)
	if title == "" {
		title = untitled
	}
	switch {
	case e.selected != "":
		e.store.UpdateLogEntry(ctx, e.selected, store.LogUpdate{Title: &title, Body: &e.body})
	case strings.TrimSpace(e.title) != "" || strings.TrimSpace(e.body) != "":
		e.selected = e.store.SaveLogEntry(ctx, model.LogEntry{Title: title, Body: e.body})
	default:
		e.dirty = false
		return false
	}
	e.dirty = false
	return true
}

// Delete removes the selected entry and starts a blank draft.
func (e *Editor) Delete(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == "" {
		return false
	}
	e.store.DeleteLogEntry(ctx, e.selected)
	e.reset("")
	return true
}

// Selected returns the id of the entry being edited, or "" for a new draft.
func (e *Editor) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Draft returns the current title and body.
func (e *Editor) Draft() (title, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title, e.body
}

// Dirty reports unsaved changes.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// WriteErr exposes the last store write failure.
func (e *Editor) WriteErr() error {
	return e.store.WriteErr()
}
