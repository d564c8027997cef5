package store

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory RecordStore used in tests and local
// development. Ordering semantics match the Postgres backend: records are
// compared by the textual form of the ordering field.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Record)}
}

// QueryByField returns all records in a collection whose field equals value.
func (s *MemoryStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := fieldValue(value)
	var records []Record
	for _, rec := range s.collections[collection] {
		v, ok := rec[field]
		if !ok {
			continue
		}
		if fieldValue(v) == want {
			records = append(records, maps.Clone(rec))
		}
	}
	sortByField(records, "id", false)
	return records, nil
}

// QueryOrdered returns up to limit records ordered by the given field.
func (s *MemoryStore) QueryOrdered(ctx context.Context, collection, field string, descending bool, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	for _, rec := range s.collections[collection] {
		records = append(records, maps.Clone(rec))
	}
	sortByField(records, field, descending)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetByID retrieves a record by id.
func (s *MemoryStore) GetByID(ctx context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(rec), nil
}

// Insert stores a new record, generating an id when one is not set.
func (s *MemoryStore) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.ID()
	if id == "" {
		id = uuid.New().String()
	}
	stored := maps.Clone(rec)
	stored["id"] = id

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Record)
	}
	s.collections[collection][id] = stored
	return id, nil
}

// Update replaces an existing record.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, rec Record) error {
	if id == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	stored := maps.Clone(rec)
	stored["id"] = id
	s.collections[collection][id] = stored
	return nil
}

// Delete removes a record by id.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func sortByField(records []Record, field string, descending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := fieldValue(records[i][field]), fieldValue(records[j][field])
		if descending {
			return a > b
		}
		return a < b
	})
}
