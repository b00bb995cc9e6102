// Package store defines the generic record store the whole platform mutates
// through. Entity kinds form an open set addressed by domain.EntityType tags;
// records are schemaless documents keyed by their "id" field.
//
// Every domain repository goes through one implementation of AuditableStore.
// The audit interceptor wraps the same interface, so routing a mutation through
// a context-bound handle is all a domain module has to do to be audited.
package store

import (
	"context"
	"maps"

	"escolar/pkg/domain"
)

// IDField is the record field every implementation resolves identity from.
const IDField = "id"

// Record is the stored form of a domain record. Implementations return copies;
// mutating a returned Record never affects stored state.
type Record map[string]any

// ID returns the record's identifier, or "" when the record has none.
func (r Record) ID() string {
	if id, ok := r[IDField].(string); ok {
		return id
	}
	return ""
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(maps.Clone(map[string]any(r)))
}

// Selector identifies the target of an update or delete: every key must match
// the stored record's value exactly. Implementations must use the selector
// verbatim; an approximated predicate would make before-state snapshots
// unattributable to the mutated record.
type Selector map[string]any

// Payload carries the fields applied by a create, update, or upsert.
type Payload map[string]any

// AuditableStore is the mutation surface the interceptor wraps. The four
// mutating methods mirror the audit action taxonomy one-to-one.
//
// Contract, shared by all implementations:
//   - Create returns the full created record, id resolved.
//   - Update applies the payload to the single record matching the selector
//     and returns the updated record; sentinel.ErrNotFound when none matches.
//   - Delete removes the matching record and returns its final state;
//     sentinel.ErrNotFound when none matches.
//   - Upsert updates the record matching the selector or creates one from the
//     selector merged with the payload.
//   - FindOne is read-only and returns sentinel.ErrNotFound on no match.
//   - Uniqueness conflicts surface sentinel.ErrConflict.
type AuditableStore interface {
	Create(ctx context.Context, entity domain.EntityType, payload Payload) (Record, error)
	Update(ctx context.Context, entity domain.EntityType, sel Selector, payload Payload) (Record, error)
	Delete(ctx context.Context, entity domain.EntityType, sel Selector) (Record, error)
	Upsert(ctx context.Context, entity domain.EntityType, sel Selector, payload Payload) (Record, error)
	FindOne(ctx context.Context, entity domain.EntityType, sel Selector) (Record, error)
}
