package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escolar/internal/audit"
	"escolar/internal/audit/handler"
	auditmem "escolar/internal/audit/store/memory"
	"escolar/internal/store"
	"escolar/internal/tenant/models"
	id "escolar/pkg/domain"
	"escolar/pkg/testutil"
)

type queryResponse struct {
	Entries []audit.Entry `json:"entries"`
}

func newRouter(journal audit.Journal) http.Handler {
	r := chi.NewRouter()
	handler.New(journal, slog.Default()).Register(r)
	return r
}

func seedEntry(t *testing.T, journal audit.Journal, unitID id.UnitID, entity id.EntityType, ts time.Time) {
	t.Helper()
	err := journal.Append(context.Background(), audit.Entry{
		ID:           id.NewEntryID(),
		Action:       audit.ActionCreate,
		EntityType:   entity,
		EntityID:     uuid.NewString(),
		After:        store.Record{"title": "x"},
		ActorID:      id.ActorID(uuid.New()),
		ActorName:    "Maria",
		TenantUnitID: unitID,
		Timestamp:    ts,
	})
	require.NoError(t, err)
}

func TestHandleQuery(t *testing.T) {
	manager := testutil.NewPrincipal("Gestora", models.RoleManager)
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	journal := auditmem.NewStore()
	seedEntry(t, journal, manager.UnitID, "Task", base)
	seedEntry(t, journal, manager.UnitID, "Grade", base.Add(time.Hour))
	seedEntry(t, journal, manager.UnitID, "Task", base.Add(2*time.Hour))
	router := newRouter(journal)

	t.Run("returns unit entries most recent first", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/audit/logs", nil), manager)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp queryResponse
		testutil.DecodeJSON(t, rec, &resp)
		require.Len(t, resp.Entries, 3)
		assert.Equal(t, id.EntityType("Task"), resp.Entries[0].EntityType)
		assert.True(t, resp.Entries[0].Timestamp.After(resp.Entries[2].Timestamp))
	})

	t.Run("entidade filters case-insensitively", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/audit/logs?entidade=task", nil), manager)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp queryResponse
		testutil.DecodeJSON(t, rec, &resp)
		require.Len(t, resp.Entries, 2)
	})

	t.Run("timestamp range is inclusive", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet,
			"/audit/logs?dataInicio=2026-06-01T10:00:00Z&dataFim=2026-06-01T11:00:00Z", nil), manager)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp queryResponse
		testutil.DecodeJSON(t, rec, &resp)
		require.Len(t, resp.Entries, 2)
	})

	t.Run("date-only dataFim covers the whole day", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet,
			"/audit/logs?dataInicio=2026-06-01&dataFim=2026-06-01", nil), manager)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp queryResponse
		testutil.DecodeJSON(t, rec, &resp)
		require.Len(t, resp.Entries, 3)
	})

	t.Run("no matches yields empty list, not an error", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/audit/logs?entidade=Message", nil), manager)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp queryResponse
		testutil.DecodeJSON(t, rec, &resp)
		assert.Empty(t, resp.Entries)
	})
}

func TestHandleQueryRejections(t *testing.T) {
	router := newRouter(auditmem.NewStore())

	t.Run("non-manager role is forbidden", func(t *testing.T) {
		teacher := testutil.NewPrincipal("Professora", models.RoleTeacher)
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/audit/logs", nil), teacher)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("manager without unit scope is forbidden", func(t *testing.T) {
		unscoped := testutil.NewPrincipal("Diretora", models.RoleManager)
		unscoped.UnitID = id.UnitID{}
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/audit/logs", nil), unscoped)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing principal is an internal error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("malformed timestamps are bad requests", func(t *testing.T) {
		manager := testutil.NewPrincipal("Gestora", models.RoleManager)
		for _, query := range []string{
			"?dataInicio=ontem",
			"?dataFim=01/06/2026",
			"?dataInicio=2026-06-02&dataFim=2026-06-01",
		} {
			req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/audit/logs"+query, nil), manager)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "query %s", query)
		}
	})
}
