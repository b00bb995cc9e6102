package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"escolar/internal/achievement"
	"escolar/internal/platform/middleware"
	"escolar/internal/tenant"
	"escolar/internal/transport/http/shared"
	dErrors "escolar/pkg/domain-errors"
	"escolar/pkg/requestcontext"
)

// Handler exposes achievement CRUD. Each request binds its own store handle
// from the authenticated principal, so mutations land in the audit journal
// without the handlers doing anything about it.
type Handler struct {
	logger *slog.Logger
	binder *tenant.Binder
}

func New(binder *tenant.Binder, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, binder: binder}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/achievements", h.handleCreate)
	r.Put("/achievements/{id}/criterion", h.handleUpdateCriterion)
	r.Delete("/achievements/{id}", h.handleDelete)
}

// service builds the per-request service around the bound handle.
func (h *Handler) service(r *http.Request) (*achievement.Service, error) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return achievement.NewService(h.binder.Bind(principal)), nil
}

type createRequest struct {
	Title     string          `json:"title"`
	Criterion json.RawMessage `json:"criterion"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, err := h.service(r)
	if err != nil {
		h.logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	criterion, err := achievement.DecodeCriterion(req.Criterion)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := svc.Create(ctx, req.Title, criterion)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, err := h.service(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	criterion, err := achievement.DecodeCriterion(raw)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := svc.UpdateCriterion(ctx, chi.URLParam(r, "id"), criterion)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
