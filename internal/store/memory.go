package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
)

// MemoryRepository is an in-process Repository used when the store is
// disabled and as a stand-in for tests. Semantics match MongoRepository.
type MemoryRepository struct {
	mu       sync.RWMutex
	records  map[string]Record // keyed by resume id
	watchers map[string][]chan []Record
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:  make(map[string]Record),
		watchers: make(map[string][]chan []Record),
	}
}

// Save implements Repository
func (r *MemoryRepository) Save(ctx context.Context, userID string, resume schema.ResumeDocument) (Record, error) {
	if resume.ResumeID == "" {
		resume.ResumeID = uuid.NewString()
	}

	now := time.Now().UTC()
	record := Record{
		ID:        resume.ResumeID,
		UserID:    userID,
		Resume:    resume,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	if existing, ok := r.records[record.ID]; ok && existing.UserID == userID {
		record.CreatedAt = existing.CreatedAt
	}
	r.records[record.ID] = record
	r.mu.Unlock()

	r.notify(userID)
	return record, nil
}

// Get implements Repository
func (r *MemoryRepository) Get(ctx context.Context, userID, resumeID string) (Record, error) {
	r.mu.RLock()
	record, ok := r.records[resumeID]
	r.mu.RUnlock()

	if !ok || record.UserID != userID {
		return Record{}, errors.NewStoreError(errors.ErrCodeDocumentNotFound,
			"Resume not found", nil).WithContext("resume_id", resumeID)
	}
	return record, nil
}

// List implements Repository
func (r *MemoryRepository) List(ctx context.Context, userID string) ([]Record, error) {
	r.mu.RLock()
	records := r.snapshotLocked(userID)
	r.mu.RUnlock()
	return records, nil
}

// Delete implements Repository
func (r *MemoryRepository) Delete(ctx context.Context, userID, resumeID string) error {
	r.mu.Lock()
	record, ok := r.records[resumeID]
	if ok && record.UserID == userID {
		delete(r.records, resumeID)
	}
	r.mu.Unlock()

	if !ok || record.UserID != userID {
		return errors.NewStoreError(errors.ErrCodeDocumentNotFound,
			"Resume not found", nil).WithContext("resume_id", resumeID)
	}

	r.notify(userID)
	return nil
}

// Watch implements Repository
func (r *MemoryRepository) Watch(ctx context.Context, userID string) (<-chan []Record, error) {
	ch := make(chan []Record, 1)

	r.mu.Lock()
	r.watchers[userID] = append(r.watchers[userID], ch)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		watchers := r.watchers[userID]
		for i, watcher := range watchers {
			if watcher == ch {
				r.watchers[userID] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Close implements Repository
func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}

// notify pushes a fresh snapshot to every watcher of the user. Slow
// watchers drop intermediate snapshots instead of blocking saves.
func (r *MemoryRepository) notify(userID string) {
	r.mu.RLock()
	snapshot := r.snapshotLocked(userID)
	watchers := append([]chan []Record(nil), r.watchers[userID]...)
	r.mu.RUnlock()

	for _, ch := range watchers {
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

func (r *MemoryRepository) snapshotLocked(userID string) []Record {
	records := []Record{}
	for _, record := range r.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records
}
