package testutil

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"escolar/internal/platform/middleware"
	"escolar/internal/tenant/models"
	id "escolar/pkg/domain"
)

// NewPrincipal builds a unit-scoped principal with fresh ids. Handy default
// for tests that only care that a valid principal exists.
func NewPrincipal(actorName string, role models.Role) models.Principal {
	return models.Principal{
		ActorID:   id.ActorID(uuid.New()),
		ActorName: actorName,
		TenantID:  id.TenantID(uuid.New()),
		UnitID:    id.UnitID(uuid.New()),
		Role:      role,
		IssuedAt:  time.Now(),
	}
}

// WithPrincipal attaches a principal to the request context, simulating what
// the auth middleware does for authenticated requests.
func WithPrincipal(req *http.Request, p models.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}
