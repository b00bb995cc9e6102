package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"escolar/internal/audit"
	"escolar/internal/store"
	id "escolar/pkg/domain"
)

// Store implements audit.Journal on PostgreSQL.
//
//	CREATE TABLE audit_entries (
//	    id             UUID        PRIMARY KEY,
//	    action         TEXT        NOT NULL,
//	    entity_type    TEXT        NOT NULL,
//	    entity_id      TEXT        NOT NULL,
//	    before_state   JSONB,
//	    after_state    JSONB,
//	    actor_id       UUID        NOT NULL,
//	    actor_name     TEXT        NOT NULL,
//	    tenant_unit_id UUID        NOT NULL,
//	    request_id     TEXT        NOT NULL DEFAULT '',
//	    timestamp      TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX audit_entries_unit_ts ON audit_entries (tenant_unit_id, timestamp DESC);
//
// No UPDATE or DELETE statement exists anywhere in this package; entries are
// immutable once inserted.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	before, err := marshalState(entry.Before)
	if err != nil {
		return fmt.Errorf("marshal before state: %w", err)
	}
	after, err := marshalState(entry.After)
	if err != nil {
		return fmt.Errorf("marshal after state: %w", err)
	}

	query := `
		INSERT INTO audit_entries (
			id, action, entity_type, entity_id,
			before_state, after_state,
			actor_id, actor_name, tenant_unit_id, request_id, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		string(entry.Action),
		string(entry.EntityType),
		entry.EntityID,
		before,
		after,
		uuid.UUID(entry.ActorID),
		entry.ActorName,
		uuid.UUID(entry.TenantUnitID),
		entry.RequestID,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, unitID id.UnitID, filter audit.Filter) ([]audit.Entry, error) {
	query := `
		SELECT id, action, entity_type, entity_id,
		       before_state, after_state,
		       actor_id, actor_name, tenant_unit_id, request_id, timestamp
		FROM audit_entries
		WHERE tenant_unit_id = $1
	`
	args := []any{uuid.UUID(unitID)}

	if filter.EntityType != "" {
		args = append(args, id.EntityType(filter.EntityType).Normalize())
		query += " AND lower(entity_type) = $" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += " AND timestamp >= $" + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += " AND timestamp <= $" + strconv.Itoa(len(args))
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT %d", audit.MaxQueryLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry
	for rows.Next() {
		var (
			entry         audit.Entry
			entryID       uuid.UUID
			action        string
			entityType    string
			before, after []byte
			actorID       uuid.UUID
			unitID        uuid.UUID
		)
		err := rows.Scan(
			&entryID,
			&action,
			&entityType,
			&entry.EntityID,
			&before,
			&after,
			&actorID,
			&entry.ActorName,
			&unitID,
			&entry.RequestID,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entry.ID = id.EntryID(entryID)
		entry.Action = audit.Action(action)
		entry.EntityType = id.EntityType(entityType)
		entry.ActorID = id.ActorID(actorID)
		entry.TenantUnitID = id.UnitID(unitID)
		if entry.Before, err = unmarshalState(before); err != nil {
			return nil, fmt.Errorf("decode before state: %w", err)
		}
		if entry.After, err = unmarshalState(after); err != nil {
			return nil, fmt.Errorf("decode after state: %w", err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func marshalState(state store.Record) (any, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func unmarshalState(data []byte) (store.Record, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var state store.Record
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return state, nil
}
