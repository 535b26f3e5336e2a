// Package state holds the per-user editing session: the list of saved
// resume variants, which one is selected, and the document currently being
// edited. It mirrors what the browser client keeps locally and stays
// consistent under concurrent sync updates from the store.
package state

import (
	"context"
	"sync"

	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
	"resumeforge/internal/store"
)

// Snapshot is an immutable view of the workspace handed to subscribers.
type Snapshot struct {
	Resumes          []store.Record        `json:"resumes"`
	SelectedResumeID string                `json:"selectedResumeId"`
	CurrentDocument  schema.ResumeDocument `json:"currentDocument"`
}

// Workspace is one user's editing session. The current document follows
// the selected saved variant: sync refreshes it when that variant changes
// remotely, and leaves it untouched when the variant disappears.
type Workspace struct {
	mu sync.RWMutex

	repo   store.Repository
	userID string

	resumes    []store.Record
	selectedID string
	current    schema.ResumeDocument

	subscribers []chan Snapshot
}

// NewWorkspace creates a workspace seeded with a fresh default document.
func NewWorkspace(repo store.Repository, userID string) *Workspace {
	return &Workspace{
		repo:    repo,
		userID:  userID,
		resumes: []store.Record{},
		current: schema.DefaultDocument(),
	}
}

// Load pulls the user's saved resumes from the store into the workspace.
func (w *Workspace) Load(ctx context.Context) error {
	records, err := w.repo.List(ctx, w.userID)
	if err != nil {
		return err
	}
	w.ApplySnapshot(records)
	return nil
}

// Current returns a copy of the document being edited.
func (w *Workspace) Current() schema.ResumeDocument {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// SetCurrent replaces the edit buffer. The caller is expected to pass a
// normalized document; handler and service outputs already are.
func (w *Workspace) SetCurrent(doc schema.ResumeDocument) {
	w.mu.Lock()
	w.current = doc
	w.mu.Unlock()
	w.broadcast()
}

// Selected returns the id of the selected saved resume, empty when the
// edit buffer is not backed by a saved variant.
func (w *Workspace) Selected() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selectedID
}

// Resumes returns the saved variants, most recently updated first.
func (w *Workspace) Resumes() []store.Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]store.Record, len(w.resumes))
	copy(out, w.resumes)
	return out
}

// Save persists the current document and selects the saved variant.
func (w *Workspace) Save(ctx context.Context) (store.Record, error) {
	w.mu.RLock()
	doc := w.current
	w.mu.RUnlock()

	record, err := w.repo.Save(ctx, w.userID, doc)
	if err != nil {
		return store.Record{}, err
	}

	records, err := w.repo.List(ctx, w.userID)
	if err != nil {
		return store.Record{}, err
	}

	w.mu.Lock()
	w.resumes = records
	w.selectedID = record.ID
	w.current = record.Resume
	w.mu.Unlock()
	w.broadcast()

	return record, nil
}

// Select loads a saved variant into the edit buffer.
func (w *Workspace) Select(resumeID string) error {
	w.mu.Lock()
	for _, record := range w.resumes {
		if record.ID == resumeID {
			w.selectedID = resumeID
			w.current = record.Resume
			w.mu.Unlock()
			w.broadcast()
			return nil
		}
	}
	w.mu.Unlock()

	return errors.NewStoreError(errors.ErrCodeDocumentNotFound,
		"Resume not found", nil).WithContext("resume_id", resumeID)
}

// Delete removes a saved variant. Deleting the selected variant resets the
// edit buffer to a fresh default document.
func (w *Workspace) Delete(ctx context.Context, resumeID string) error {
	if err := w.repo.Delete(ctx, w.userID, resumeID); err != nil {
		return err
	}

	records, err := w.repo.List(ctx, w.userID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.resumes = records
	if w.selectedID == resumeID {
		w.selectedID = ""
		w.current = schema.DefaultDocument()
	}
	w.mu.Unlock()
	w.broadcast()

	return nil
}

// Reset discards the edit buffer and deselects. Saved variants stay.
func (w *Workspace) Reset() {
	w.mu.Lock()
	w.selectedID = ""
	w.current = schema.DefaultDocument()
	w.mu.Unlock()
	w.broadcast()
}

// ApplySnapshot replaces the saved list with a sync snapshot from the
// store. When the snapshot still carries the selected variant, the edit
// buffer is refreshed with that entry's data. When it does not, the buffer
// and the selection are left alone; the user's unsaved work goes stale,
// not lost.
func (w *Workspace) ApplySnapshot(records []store.Record) {
	w.mu.Lock()
	w.resumes = records

	if w.selectedID != "" {
		for _, record := range records {
			if record.ID == w.selectedID {
				w.current = record.Resume
				break
			}
		}
	}
	w.mu.Unlock()
	w.broadcast()
}

// Subscribe returns a channel receiving a snapshot after every change.
// Slow subscribers miss intermediate snapshots instead of blocking writers.
func (w *Workspace) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	w.mu.Lock()
	w.subscribers = append(w.subscribers, ch)
	w.mu.Unlock()
	return ch
}

// Sync consumes store change notifications until ctx is done.
func (w *Workspace) Sync(ctx context.Context) error {
	updates, err := w.repo.Watch(ctx, w.userID)
	if err != nil {
		return err
	}

	go func() {
		for records := range updates {
			w.ApplySnapshot(records)
		}
	}()

	return nil
}

// Snapshot returns the current workspace view.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshotLocked()
}

func (w *Workspace) snapshotLocked() Snapshot {
	resumes := make([]store.Record, len(w.resumes))
	copy(resumes, w.resumes)
	return Snapshot{
		Resumes:          resumes,
		SelectedResumeID: w.selectedID,
		CurrentDocument:  w.current,
	}
}

func (w *Workspace) broadcast() {
	w.mu.RLock()
	snapshot := w.snapshotLocked()
	subscribers := append([]chan Snapshot(nil), w.subscribers...)
	w.mu.RUnlock()

	for _, ch := range subscribers {
		// Drop the undelivered snapshot, then offer the fresh one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
