package achievement

import (
	"context"
	"errors"
	"strings"

	"escolar/internal/store"
	id "escolar/pkg/domain"
	dErrors "escolar/pkg/domain-errors"
	"escolar/pkg/platform/sentinel"
)

// Entity is the record kind this module owns.
const Entity id.EntityType = "Achievement"

// Service orchestrates achievement lifecycle. It is constructed per request
// around the context-bound handle, so every mutation it issues is attributed
// to the acting principal.
type Service struct {
	store store.AuditableStore
}

func NewService(bound store.AuditableStore) *Service {
	return &Service{store: bound}
}

// Create registers a new achievement with a validated criterion.
func (s *Service) Create(ctx context.Context, title string, criterion Criterion) (store.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "achievement title is required")
	}
	if criterion == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "achievement criterion is required")
	}
	if err := criterion.Validate(); err != nil {
		return nil, err
	}

	record, err := s.store.Create(ctx, Entity, store.Payload{
		"title":     title,
		"criterion": EncodeCriterion(criterion),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "achievement title must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create achievement")
	}
	return record, nil
}

// UpdateCriterion replaces the criterion of an existing achievement.
func (s *Service) UpdateCriterion(ctx context.Context, achievementID string, criterion Criterion) (store.Record, error) {
	if achievementID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "achievement id is required")
	}
	if criterion == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "achievement criterion is required")
	}
	if err := criterion.Validate(); err != nil {
		return nil, err
	}

	record, err := s.store.Update(ctx, Entity,
		store.Selector{store.IDField: achievementID},
		store.Payload{"criterion": EncodeCriterion(criterion)},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "achievement not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update achievement")
	}
	return record, nil
}

// Delete removes an achievement.
func (s *Service) Delete(ctx context.Context, achievementID string) error {
	if achievementID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "achievement id is required")
	}
	_, err := s.store.Delete(ctx, Entity, store.Selector{store.IDField: achievementID})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "achievement not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete achievement")
	}
	return nil
}
