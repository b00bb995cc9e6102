//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"escolar/internal/store"
	"escolar/pkg/platform/sentinel"
	"escolar/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *store.Postgres
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "records"))
}

func (s *PostgresSuite) TestCreateAssignsID() {
	record, err := s.store.Create(s.ctx, "Task", store.Payload{"title": "Lição 1"})
	s.Require().NoError(err)
	s.NotEmpty(record.ID())
	s.Equal("Lição 1", record["title"])
}

func (s *PostgresSuite) TestCreateKeepsCallerID() {
	record, err := s.store.Create(s.ctx, "Task", store.Payload{"id": "task-1", "title": "Lição 1"})
	s.Require().NoError(err)
	s.Equal("task-1", record.ID())

	_, err = s.store.Create(s.ctx, "Task", store.Payload{"id": "task-1", "title": "Outra"})
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresSuite) TestUniqueIndexSurfacesConflict() {
	_, err := s.store.Create(s.ctx, "Task", store.Payload{"title": "Lição 1"})
	s.Require().NoError(err)

	_, err = s.store.Create(s.ctx, "Task", store.Payload{"title": "Lição 1"})
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresSuite) TestEntityTypesArePartitioned() {
	_, err := s.store.Create(s.ctx, "Task", store.Payload{"id": "shared", "title": "Lição 1"})
	s.Require().NoError(err)

	// Same id under a different entity type is a distinct record.
	_, err = s.store.Create(s.ctx, "Achievement", store.Payload{"id": "shared", "title": "Leitor Voraz"})
	s.Require().NoError(err)

	record, err := s.store.FindOne(s.ctx, "achievement", store.Selector{"id": "shared"})
	s.Require().NoError(err)
	s.Equal("Leitor Voraz", record["title"])
}

func (s *PostgresSuite) TestUpdateMergesPayload() {
	created, err := s.store.Create(s.ctx, "Task", store.Payload{"title": "Lição 1", "status": "aberta"})
	s.Require().NoError(err)

	updated, err := s.store.Update(s.ctx, "Task",
		store.Selector{store.IDField: created.ID()},
		store.Payload{"status": "concluída"},
	)
	s.Require().NoError(err)
	s.Equal("Lição 1", updated["title"])
	s.Equal("concluída", updated["status"])
}

func (s *PostgresSuite) TestUpdateMissingRecord() {
	_, err := s.store.Update(s.ctx, "Task",
		store.Selector{store.IDField: "missing"},
		store.Payload{"status": "concluída"},
	)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestDeleteReturnsFinalState() {
	created, err := s.store.Create(s.ctx, "Task", store.Payload{"title": "Lição 1"})
	s.Require().NoError(err)

	gone, err := s.store.Delete(s.ctx, "Task", store.Selector{store.IDField: created.ID()})
	s.Require().NoError(err)
	s.Equal("Lição 1", gone["title"])

	_, err = s.store.FindOne(s.ctx, "Task", store.Selector{store.IDField: created.ID()})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestUpsertBothBranches() {
	created, err := s.store.Upsert(s.ctx, "Enrollment",
		store.Selector{"studentId": "st-1", "classId": "cl-1"},
		store.Payload{"status": "ativa"},
	)
	s.Require().NoError(err)
	// Insert branch merges selector fields into the new record.
	s.Equal("st-1", created["studentId"])
	s.Equal("ativa", created["status"])

	updated, err := s.store.Upsert(s.ctx, "Enrollment",
		store.Selector{"studentId": "st-1", "classId": "cl-1"},
		store.Payload{"status": "trancada"},
	)
	s.Require().NoError(err)
	s.Equal(created.ID(), updated.ID())
	s.Equal("trancada", updated["status"])
}

func (s *PostgresSuite) TestSelectorIsContainment() {
	_, err := s.store.Create(s.ctx, "Task", store.Payload{"title": "Lição 1", "status": "aberta"})
	s.Require().NoError(err)

	_, err = s.store.FindOne(s.ctx, "Task", store.Selector{"title": "Lição 1", "status": "fechada"})
	s.ErrorIs(err, sentinel.ErrNotFound)

	record, err := s.store.FindOne(s.ctx, "Task", store.Selector{"title": "Lição 1"})
	s.Require().NoError(err)
	s.Equal("aberta", record["status"])
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}
