package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"escolar/internal/audit"
	"escolar/internal/platform/middleware"
	"escolar/internal/transport/http/shared"
	dErrors "escolar/pkg/domain-errors"
	"escolar/pkg/requestcontext"
)

// Handler serves the manager-facing audit read API. There is no write
// endpoint: entries only come into existence as a side effect of domain
// mutations passing through the interceptor.
type Handler struct {
	logger  *slog.Logger
	journal audit.Journal
}

func New(journal audit.Journal, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, journal: journal}
}

// Register registers the audit routes with the chi router. The caller is
// expected to have mounted auth middleware above this subtree.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/logs", h.handleQuery)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	if !principal.IsManager() {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "audit log access requires the manager role"))
		return
	}
	if !principal.HasUnitScope() {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "audit log access requires a unit scope"))
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entries, err := h.journal.Query(ctx, principal.UnitID, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed",
			"request_id", requestID,
			"tenant_unit_id", principal.UnitID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to query audit log"))
		return
	}

	if entries == nil {
		entries = []audit.Entry{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// parseFilter reads the query parameters: entidade (entity type,
// case-insensitive exact match) and dataInicio/dataFim (inclusive ISO-8601
// timestamp range; a date-only dataFim covers the whole day).
func parseFilter(r *http.Request) (audit.Filter, error) {
	filter := audit.Filter{EntityType: r.URL.Query().Get("entidade")}

	if raw := r.URL.Query().Get("dataInicio"); raw != "" {
		from, err := parseTimeParam(raw, false)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "dataInicio must be an ISO-8601 timestamp")
		}
		filter.From = &from
	}
	if raw := r.URL.Query().Get("dataFim"); raw != "" {
		to, err := parseTimeParam(raw, true)
		if err != nil {
			return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "dataFim must be an ISO-8601 timestamp")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return audit.Filter{}, dErrors.New(dErrors.CodeBadRequest, "dataInicio must not be after dataFim")
	}
	return filter, nil
}

func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		// Inclusive upper bound for a date-only value.
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
