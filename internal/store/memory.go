package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"escolar/pkg/domain"
	"escolar/pkg/platform/sentinel"
)

// InMemory is a thread-safe AuditableStore used in unit tests and local
// development. Records are partitioned by normalized entity type.
type InMemory struct {
	mu         sync.RWMutex
	records    map[string]map[string]Record // entity -> id -> record
	uniqueKeys map[string][]string          // entity -> fields that must be unique
}

func NewInMemory() *InMemory {
	return &InMemory{
		records:    make(map[string]map[string]Record),
		uniqueKeys: make(map[string][]string),
	}
}

// DeclareUnique registers fields that must be unique per record of the given
// entity type. Violations surface sentinel.ErrConflict, matching what a
// database unique index would do.
func (s *InMemory) DeclareUnique(entity domain.EntityType, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniqueKeys[entity.Normalize()] = append(s.uniqueKeys[entity.Normalize()], fields...)
}

func (s *InMemory) Create(_ context.Context, entity domain.EntityType, payload Payload) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := Record(payload).Clone()
	if record == nil {
		record = Record{}
	}
	if record.ID() == "" {
		record[IDField] = uuid.NewString()
	}

	bucket := s.bucket(entity)
	if _, exists := bucket[record.ID()]; exists {
		return nil, sentinel.ErrConflict
	}
	if err := s.checkUnique(entity, record, record.ID()); err != nil {
		return nil, err
	}

	bucket[record.ID()] = record
	return record.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, entity domain.EntityType, sel Selector, payload Payload) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.match(entity, sel)
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	updated := existing.Clone()
	for k, v := range payload {
		updated[k] = v
	}
	if err := s.checkUnique(entity, updated, existing.ID()); err != nil {
		return nil, err
	}

	s.bucket(entity)[existing.ID()] = updated
	return updated.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, entity domain.EntityType, sel Selector) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.match(entity, sel)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.bucket(entity), existing.ID())
	return existing.Clone(), nil
}

func (s *InMemory) Upsert(ctx context.Context, entity domain.EntityType, sel Selector, payload Payload) (Record, error) {
	s.mu.Lock()
	existing, ok := s.match(entity, sel)
	if ok {
		updated := existing.Clone()
		for k, v := range payload {
			updated[k] = v
		}
		if err := s.checkUnique(entity, updated, existing.ID()); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.bucket(entity)[existing.ID()] = updated
		s.mu.Unlock()
		return updated.Clone(), nil
	}
	s.mu.Unlock()

	// No match: insert the selector merged with the payload.
	merged := Payload{}
	for k, v := range sel {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return s.Create(ctx, entity, merged)
}

func (s *InMemory) FindOne(_ context.Context, entity domain.EntityType, sel Selector) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, ok := s.match(entity, sel)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return existing.Clone(), nil
}

// bucket returns the live record map for an entity type. Callers must hold mu.
func (s *InMemory) bucket(entity domain.EntityType) map[string]Record {
	key := entity.Normalize()
	if s.records[key] == nil {
		s.records[key] = make(map[string]Record)
	}
	return s.records[key]
}

// match finds the single record satisfying the selector. Callers must hold mu.
func (s *InMemory) match(entity domain.EntityType, sel Selector) (Record, bool) {
	for _, record := range s.records[entity.Normalize()] {
		if matches(record, sel) {
			return record, true
		}
	}
	return nil, false
}

func (s *InMemory) checkUnique(entity domain.EntityType, candidate Record, selfID string) error {
	for _, field := range s.uniqueKeys[entity.Normalize()] {
		value, ok := candidate[field]
		if !ok {
			continue
		}
		for id, record := range s.records[entity.Normalize()] {
			if id == selfID {
				continue
			}
			if record[field] == value {
				return sentinel.ErrConflict
			}
		}
	}
	return nil
}

func matches(record Record, sel Selector) bool {
	for k, want := range sel {
		if record[k] != want {
			return false
		}
	}
	return true
}
