package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"escolar/pkg/domain"
	"escolar/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error class for unique index conflicts.
const uniqueViolation = "23505"

// Postgres persists records of every entity type in a single documents table:
//
//	CREATE TABLE records (
//	    entity_type TEXT        NOT NULL,
//	    id          TEXT        NOT NULL,
//	    data        JSONB       NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (entity_type, id)
//	);
//
// Selectors are evaluated as JSONB containment, so the snapshot read and the
// mutation target records through the identical predicate. Per-entity
// uniqueness is enforced with partial unique indexes on data expressions;
// violations surface sentinel.ErrConflict.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, entity domain.EntityType, payload Payload) (Record, error) {
	record := Record(payload).Clone()
	if record == nil {
		record = Record{}
	}
	if record.ID() == "" {
		record[IDField] = uuid.NewString()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	query := `
		INSERT INTO records (entity_type, id, data)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, entity.Normalize(), record.ID(), data); err != nil {
		return nil, translatePQ(err, "insert record")
	}
	return record, nil
}

func (s *Postgres) Update(ctx context.Context, entity domain.EntityType, sel Selector, payload Payload) (Record, error) {
	selJSON, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("marshal selector: %w", err)
	}
	patchJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	query := `
		UPDATE records
		SET data = data || $3::jsonb, updated_at = now()
		WHERE entity_type = $1 AND data @> $2::jsonb
		RETURNING data
	`
	var data []byte
	err = s.db.QueryRowContext(ctx, query, entity.Normalize(), selJSON, patchJSON).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, translatePQ(err, "update record")
	}
	return unmarshalRecord(data)
}

func (s *Postgres) Delete(ctx context.Context, entity domain.EntityType, sel Selector) (Record, error) {
	selJSON, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("marshal selector: %w", err)
	}

	query := `
		DELETE FROM records
		WHERE entity_type = $1 AND data @> $2::jsonb
		RETURNING data
	`
	var data []byte
	err = s.db.QueryRowContext(ctx, query, entity.Normalize(), selJSON).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	return unmarshalRecord(data)
}

func (s *Postgres) Upsert(ctx context.Context, entity domain.EntityType, sel Selector, payload Payload) (Record, error) {
	updated, err := s.Update(ctx, entity, sel, payload)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	merged := Payload{}
	for k, v := range sel {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return s.Create(ctx, entity, merged)
}

func (s *Postgres) FindOne(ctx context.Context, entity domain.EntityType, sel Selector) (Record, error) {
	selJSON, err := json.Marshal(sel)
	if err != nil {
		return nil, fmt.Errorf("marshal selector: %w", err)
	}

	query := `
		SELECT data FROM records
		WHERE entity_type = $1 AND data @> $2::jsonb
		LIMIT 1
	`
	var data []byte
	err = s.db.QueryRowContext(ctx, query, entity.Normalize(), selJSON).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return unmarshalRecord(data)
}

func unmarshalRecord(data []byte) (Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return record, nil
}

func translatePQ(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
