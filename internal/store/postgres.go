package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements RecordStore on a single jsonb-backed table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres-backed record store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Setup creates the backing table if it does not exist.
func (s *PostgresStore) Setup(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// QueryByField returns all records in a collection whose field equals value.
func (s *PostgresStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Record, error) {
	query := `
		SELECT data
		FROM records
		WHERE collection = $1 AND data ->> $2 = $3
	`
	rows, err := s.db.Query(ctx, query, collection, field, fieldValue(value))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// QueryOrdered returns up to limit records ordered by the given field.
func (s *PostgresStore) QueryOrdered(ctx context.Context, collection, field string, descending bool, limit int) ([]Record, error) {
	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	if limit <= 0 {
		limit = -1 // LIMIT ALL
	}
	query := fmt.Sprintf(`
		SELECT data
		FROM records
		WHERE collection = $1
		ORDER BY data ->> $2 %s
		LIMIT NULLIF($3, -1)
	`, direction)
	rows, err := s.db.Query(ctx, query, collection, field, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s ordered by %s: %w", collection, field, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByID retrieves a record by id.
func (s *PostgresStore) GetByID(ctx context.Context, collection, id string) (Record, error) {
	query := `
		SELECT data
		FROM records
		WHERE collection = $1 AND id = $2
	`
	var data []byte
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// Insert stores a new record, generating an id when one is not set.
func (s *PostgresStore) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.New().String()
		rec = maps.Clone(rec)
		rec["id"] = id
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `INSERT INTO records (collection, id, data) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, collection, id, data); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

// Update replaces an existing record.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, rec Record) error {
	if id == "" {
		return ErrMissingID
	}
	rec = maps.Clone(rec)
	rec["id"] = id

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `UPDATE records SET data = $3 WHERE collection = $1 AND id = $2`
	result, err := s.db.Exec(ctx, query, collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record by id.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return ErrMissingID
	}
	query := `DELETE FROM records WHERE collection = $1 AND id = $2`
	result, err := s.db.Exec(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}
