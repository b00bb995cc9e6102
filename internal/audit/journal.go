package audit

import (
	"context"
	"time"

	id "escolar/pkg/domain"
)

// MaxQueryLimit caps every journal query regardless of how many entries
// match. Callers needing more must page by timestamp, which the journal does
// not implement.
const MaxQueryLimit = 100

// Filter narrows a journal query. Zero values mean "no constraint".
type Filter struct {
	// EntityType is an exact, case-insensitive match on the entry's entity type.
	EntityType string
	// From and To bound the entry timestamp inclusively on both ends.
	From *time.Time
	To   *time.Time
}

// Matches reports whether an entry satisfies the filter. Shared by in-memory
// implementations and tests; the postgres store expresses the same predicate
// in SQL.
func (f Filter) Matches(entry Entry) bool {
	if f.EntityType != "" && entry.EntityType.Normalize() != id.EntityType(f.EntityType).Normalize() {
		return false
	}
	if f.From != nil && entry.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && entry.Timestamp.After(*f.To) {
		return false
	}
	return true
}

// Journal persists immutable audit entries and serves filtered, bounded reads.
//
// Append never updates or deletes existing entries. Query returns at most
// MaxQueryLimit entries for one unit scope, most recent first.
type Journal interface {
	Append(ctx context.Context, entry Entry) error
	Query(ctx context.Context, unitID id.UnitID, filter Filter) ([]Entry, error)
}
