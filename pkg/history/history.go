// Package history persists computed deployment orders for later inspection.
//
// The serve API records every successful run; `GET /api/v1/history` reads the
// most recent ones back. Storage is pluggable: a MongoDB-backed store for
// deployments, and a null store that keeps nothing for runs without a
// database.
package history

import (
	"context"
	"time"
)

// Record is one persisted pipeline run.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Root      string    `json:"root,omitempty" bson:"root,omitempty"`
	Order     []string  `json:"order" bson:"order"`
	Stacks    int       `json:"stacks" bson:"stacks"`
	Edges     int       `json:"edges" bson:"edges"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store persists and queries run records.
type Store interface {
	// Save persists one record.
	Save(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// NullStore discards every record. It backs runs with no history database.
type NullStore struct{}

// NewNullStore creates a store that keeps nothing.
func NewNullStore() Store {
	return &NullStore{}
}

func (s *NullStore) Save(ctx context.Context, rec Record) error { return nil }

func (s *NullStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	return []Record{}, nil
}

func (s *NullStore) Close(ctx context.Context) error { return nil }

var _ Store = (*NullStore)(nil)
