package state

import (
	"context"
	"testing"
	"time"

	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
	"resumeforge/internal/store"
)

func newTestWorkspace() *Workspace {
	return NewWorkspace(store.NewMemoryRepository(), "user-1")
}

func TestWorkspaceStartsWithDefaultDocument(t *testing.T) {
	w := newTestWorkspace()

	current := w.Current()
	if current.ResumeTitle != schema.DefaultTitle {
		t.Errorf("title = %q, want %q", current.ResumeTitle, schema.DefaultTitle)
	}
	if w.Selected() != "" {
		t.Errorf("selected = %q, want empty", w.Selected())
	}
	if len(w.Resumes()) != 0 {
		t.Errorf("resumes length = %d, want 0", len(w.Resumes()))
	}
}

func TestWorkspaceSaveSelectsSavedVariant(t *testing.T) {
	w := newTestWorkspace()
	ctx := context.Background()

	doc := w.Current()
	doc.ResumeTitle = "Platform Engineer Draft"
	w.SetCurrent(doc)

	record, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if record.ID == "" {
		t.Fatal("saved record has no id")
	}
	if w.Selected() != record.ID {
		t.Errorf("selected = %q, want %q", w.Selected(), record.ID)
	}
	if w.Current().ResumeID != record.ID {
		t.Errorf("current document resumeId = %q, want %q", w.Current().ResumeID, record.ID)
	}
}

func TestWorkspaceSelectLoadsVariant(t *testing.T) {
	w := newTestWorkspace()
	ctx := context.Background()

	first := w.Current()
	first.ResumeTitle = "First"
	w.SetCurrent(first)
	firstRecord, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	w.Reset()
	second := w.Current()
	second.ResumeTitle = "Second"
	w.SetCurrent(second)
	if _, err := w.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := w.Select(firstRecord.ID); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if w.Current().ResumeTitle != "First" {
		t.Errorf("current title = %q, want 'First'", w.Current().ResumeTitle)
	}

	if err := w.Select("missing-id"); !errors.IsType(err, errors.ErrorTypeStore) {
		t.Errorf("Select(missing) = %v, want store error", err)
	}
}

// The full session arc: tailor a resume against a job posting, save it,
// delete it, start over.
func TestWorkspaceSessionLifecycle(t *testing.T) {
	w := newTestWorkspace()
	ctx := context.Background()

	// Edit a document for a specific posting.
	doc := w.Current()
	doc.ResumeTitle = "Backend Engineer"
	doc.JobDescription = "Backend Engineer at Initech. Go, Postgres, Kubernetes."
	doc.ProfessionalSummary = "Engineer with five years of Go experience."
	w.SetCurrent(doc)

	record, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(w.Resumes()) != 1 {
		t.Fatalf("resumes length = %d, want 1", len(w.Resumes()))
	}

	// Deleting the selected variant resets the edit buffer.
	if err := w.Delete(ctx, record.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(w.Resumes()) != 0 {
		t.Errorf("resumes length = %d after delete, want 0", len(w.Resumes()))
	}
	if w.Selected() != "" {
		t.Errorf("selected = %q after delete, want empty", w.Selected())
	}
	if w.Current().JobDescription != "" {
		t.Error("edit buffer should reset to defaults after deleting the selected variant")
	}
	if w.Current().ResumeTitle != schema.DefaultTitle {
		t.Errorf("title = %q after delete, want default", w.Current().ResumeTitle)
	}
}

func TestWorkspaceDeleteUnselectedKeepsBuffer(t *testing.T) {
	w := newTestWorkspace()
	ctx := context.Background()

	first := w.Current()
	first.ResumeTitle = "Keep Me Selected"
	w.SetCurrent(first)
	if _, err := w.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	selectedID := w.Selected()

	w.Reset()
	second := w.Current()
	second.ResumeTitle = "Delete Me"
	w.SetCurrent(second)
	secondRecord, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := w.Select(selectedID); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if err := w.Delete(ctx, secondRecord.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if w.Selected() != selectedID {
		t.Errorf("selected = %q, want %q", w.Selected(), selectedID)
	}
	if w.Current().ResumeTitle != "Keep Me Selected" {
		t.Errorf("current title = %q, edit buffer should survive", w.Current().ResumeTitle)
	}
}

func TestWorkspaceApplySnapshotKeepsEditBuffer(t *testing.T) {
	w := newTestWorkspace()
	ctx := context.Background()

	doc := w.Current()
	doc.ResumeTitle = "Unsaved Work"
	w.SetCurrent(doc)
	record, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Another device deleted everything; the sync snapshot is empty.
	w.ApplySnapshot([]store.Record{})

	if len(w.Resumes()) != 0 {
		t.Errorf("resumes length = %d, want 0", len(w.Resumes()))
	}
	if w.Selected() != record.ID {
		t.Errorf("selected = %q, want %q (selection survives a stale snapshot)", w.Selected(), record.ID)
	}
	// The edit buffer goes stale, never erased.
	if w.Current().ResumeTitle != "Unsaved Work" {
		t.Errorf("current title = %q, edit buffer must survive sync", w.Current().ResumeTitle)
	}
}

func TestWorkspaceApplySnapshotRefreshesSelected(t *testing.T) {
	w := newTestWorkspace()
	ctx := context.Background()

	doc := w.Current()
	doc.ResumeTitle = "Original Title"
	w.SetCurrent(doc)
	record, err := w.Save(ctx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Another device edited the selected variant; the snapshot carries the
	// same id with newer data.
	edited := record
	edited.Resume.ResumeTitle = "Edited Elsewhere"
	w.ApplySnapshot([]store.Record{edited})

	if w.Selected() != record.ID {
		t.Errorf("selected = %q, want %q", w.Selected(), record.ID)
	}
	if w.Current().ResumeTitle != "Edited Elsewhere" {
		t.Errorf("current title = %q, want 'Edited Elsewhere'", w.Current().ResumeTitle)
	}
}

func TestWorkspaceSubscribeReceivesSnapshots(t *testing.T) {
	w := newTestWorkspace()
	updates := w.Subscribe()

	doc := w.Current()
	doc.ResumeTitle = "Broadcast Me"
	w.SetCurrent(doc)

	select {
	case snapshot := <-updates:
		if snapshot.CurrentDocument.ResumeTitle != "Broadcast Me" {
			t.Errorf("snapshot title = %q", snapshot.CurrentDocument.ResumeTitle)
		}
	default:
		t.Fatal("no snapshot delivered after SetCurrent")
	}
}

func TestWorkspaceSyncAppliesStoreChanges(t *testing.T) {
	repo := store.NewMemoryRepository()
	w := NewWorkspace(repo, "user-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	updates := w.Subscribe()

	// A save from another device lands in the workspace via the watcher.
	doc := schema.DefaultDocument()
	doc.ResumeTitle = "From Another Device"
	if _, err := repo.Save(ctx, "user-1", doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case snapshot := <-updates:
			if len(snapshot.Resumes) == 1 {
				if snapshot.Resumes[0].Resume.ResumeTitle != "From Another Device" {
					t.Errorf("synced title = %q", snapshot.Resumes[0].Resume.ResumeTitle)
				}
				return
			}
		case <-deadline:
			t.Fatal("sync snapshot never arrived")
		}
	}
}
