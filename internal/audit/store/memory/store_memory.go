package memory

import (
	"context"
	"sort"
	"sync"

	"escolar/internal/audit"
	id "escolar/pkg/domain"
)

// Store is a thread-safe in-memory journal, partitioned by unit scope.
// Entries are append-only; nothing in this type mutates or removes them.
type Store struct {
	mu      sync.RWMutex
	entries map[id.UnitID][]audit.Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[id.UnitID][]audit.Entry)}
}

func (s *Store) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.TenantUnitID] = append(s.entries[entry.TenantUnitID], entry.Clone())
	return nil
}

func (s *Store) Query(_ context.Context, unitID id.UnitID, filter audit.Filter) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk newest insertion first so the stable sort keeps later writes ahead
	// of earlier ones when timestamps tie.
	unit := s.entries[unitID]
	var matched []audit.Entry
	for i := len(unit) - 1; i >= 0; i-- {
		if filter.Matches(unit[i]) {
			matched = append(matched, unit[i].Clone())
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Timestamp.After(matched[b].Timestamp)
	})

	if len(matched) > audit.MaxQueryLimit {
		matched = matched[:audit.MaxQueryLimit]
	}
	return matched, nil
}

// Clear drops all entries. For tests only.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[id.UnitID][]audit.Entry)
}
