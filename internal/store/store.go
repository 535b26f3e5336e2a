// Package store persists resume documents per user. The server treats the
// store as optional; when it is disabled every handler still works, clients
// just lose cross-device sync.
package store

import (
	"context"
	"time"

	"resumeforge/internal/schema"
)

// Record wraps a resume document with its ownership and bookkeeping fields.
// The resume itself stays canonical; the wrapper is what the store indexes.
type Record struct {
	ID        string                `bson:"_id" json:"id"`
	UserID    string                `bson:"userId" json:"userId"`
	Resume    schema.ResumeDocument `bson:"resume" json:"resume"`
	CreatedAt time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// Repository is the persistence contract for resume documents. Saves are
// wholesale document replacements, never partial patches, so the stored
// copy is always a normalized document.
type Repository interface {
	// Save upserts a resume for a user. A document without a resumeId gets
	// one minted. Returns the stored record.
	Save(ctx context.Context, userID string, resume schema.ResumeDocument) (Record, error)

	// Get fetches one resume by id. Returns a DocumentNotFound error when
	// the user has no resume under that id.
	Get(ctx context.Context, userID, resumeID string) (Record, error)

	// List returns all of a user's resumes, most recently updated first.
	List(ctx context.Context, userID string) ([]Record, error)

	// Delete removes one resume. Returns a DocumentNotFound error when
	// nothing matched.
	Delete(ctx context.Context, userID, resumeID string) error

	// Watch emits the user's full resume list whenever it changes. The
	// channel closes when ctx is done.
	Watch(ctx context.Context, userID string) (<-chan []Record, error)

	Close(ctx context.Context) error
}
