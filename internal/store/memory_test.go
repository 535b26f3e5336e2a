package store

import (
	"context"
	"testing"
	"time"

	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
)

func TestMemoryRepositorySaveMintsResumeID(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	doc := schema.DefaultDocument()
	record, err := repo.Save(ctx, "user-1", doc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if record.ID == "" {
		t.Error("Save() should mint a resume id")
	}
	if record.Resume.ResumeID != record.ID {
		t.Errorf("record id %q != resume id %q", record.ID, record.Resume.ResumeID)
	}
}

func TestMemoryRepositorySaveReplacesWholesale(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	doc := schema.DefaultDocument()
	doc.ResumeTitle = "First Draft"
	saved, err := repo.Save(ctx, "user-1", doc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	saved.Resume.ResumeTitle = "Second Draft"
	replaced, err := repo.Save(ctx, "user-1", saved.Resume)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if replaced.ID != saved.ID {
		t.Errorf("replacement changed id: %q -> %q", saved.ID, replaced.ID)
	}
	if !replaced.CreatedAt.Equal(saved.CreatedAt) {
		t.Error("replacement should keep the original createdAt")
	}

	records, err := repo.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List() length = %d, want 1", len(records))
	}
	if records[0].Resume.ResumeTitle != "Second Draft" {
		t.Errorf("title = %q, want the replacement", records[0].Resume.ResumeTitle)
	}
}

func TestMemoryRepositoryPerUserIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	record, err := repo.Save(ctx, "user-1", schema.DefaultDocument())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Another user cannot see or delete the document.
	if _, err := repo.Get(ctx, "user-2", record.ID); !errors.IsType(err, errors.ErrorTypeStore) {
		t.Errorf("Get() by other user: expected store error, got %v", err)
	}
	if err := repo.Delete(ctx, "user-2", record.ID); err == nil {
		t.Error("Delete() by other user should fail")
	}

	records, err := repo.List(ctx, "user-2")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("other user's list length = %d, want 0", len(records))
	}
}

func TestMemoryRepositoryDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	record, err := repo.Save(ctx, "user-1", schema.DefaultDocument())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := repo.Delete(ctx, "user-1", record.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err = repo.Delete(ctx, "user-1", record.ID)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeDocumentNotFound {
		t.Errorf("second Delete() = %v, want DOCUMENT_NOT_FOUND", err)
	}
}

func TestMemoryRepositoryWatch(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := repo.Watch(ctx, "user-1")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	doc := schema.DefaultDocument()
	doc.ResumeTitle = "Watched Resume"
	if _, err := repo.Save(ctx, "user-1", doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	select {
	case snapshot := <-updates:
		if len(snapshot) != 1 {
			t.Fatalf("snapshot length = %d, want 1", len(snapshot))
		}
		if snapshot[0].Resume.ResumeTitle != "Watched Resume" {
			t.Errorf("snapshot title = %q", snapshot[0].Resume.ResumeTitle)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received after save")
	}

	// Saves for other users do not reach this watcher.
	if _, err := repo.Save(ctx, "user-2", schema.DefaultDocument()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	select {
	case snapshot := <-updates:
		t.Errorf("unexpected snapshot for another user's save: %d records", len(snapshot))
	case <-time.After(50 * time.Millisecond):
	}
}
