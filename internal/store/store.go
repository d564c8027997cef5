package store

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	CollectionUsers         = "users"
	CollectionPets          = "pets"
	CollectionPhotos        = "photos"
	CollectionContests      = "contests"
	CollectionContestPhotos = "contest_photos"
	CollectionConnections   = "connections"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrMissingID is returned when an update or delete is attempted
	// without a record id.
	ErrMissingID = errors.New("record id is required")
)

// Record is a schemaless document as stored in a collection.
type Record map[string]any

// ID returns the record's id field, or "" when unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// RecordStore is generic document-collection access. All higher layers
// depend on this interface rather than a concrete backend.
type RecordStore interface {
	// QueryByField returns all records in a collection whose field equals
	// the given value.
	QueryByField(ctx context.Context, collection, field string, value any) ([]Record, error)
	// QueryOrdered returns up to limit records from a collection, ordered
	// by the given field. limit <= 0 means no limit.
	QueryOrdered(ctx context.Context, collection, field string, descending bool, limit int) ([]Record, error)
	// GetByID returns a single record, or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Record, error)
	// Insert stores a new record and returns its id. A missing id field is
	// filled with a generated one.
	Insert(ctx context.Context, collection string, rec Record) (string, error)
	// Update replaces an existing record. Returns ErrMissingID when id is
	// empty and ErrNotFound when the record does not exist.
	Update(ctx context.Context, collection, id string, rec Record) error
	// Delete removes a record. Returns ErrMissingID when id is empty.
	Delete(ctx context.Context, collection, id string) error
}
