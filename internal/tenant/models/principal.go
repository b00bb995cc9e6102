// Package models holds the tenant-scope value types shared by the audit layer
// and transport middleware.
package models

import (
	"time"

	id "escolar/pkg/domain"
	dErrors "escolar/pkg/domain-errors"
)

// Role is the coarse authorization role carried by an authenticated principal.
type Role string

const (
	RoleManager  Role = "manager"
	RoleTeacher  Role = "teacher"
	RoleStudent  Role = "student"
	RoleGuardian Role = "guardian"
)

// Principal is the authenticated identity established by the auth middleware.
//
// Invariants:
//   - ActorID and TenantID are non-nil (construction fails closed otherwise)
//   - UnitID may be nil: some principals (institution-level admins) act outside
//     any unit scope, and their mutations are deliberately not attributable to
//     a unit, so the audit layer skips them
//   - A Principal is immutable after construction and never persisted
type Principal struct {
	ActorID   id.ActorID
	ActorName string
	TenantID  id.TenantID
	UnitID    id.UnitID
	Role      Role
	IssuedAt  time.Time
}

// NewPrincipal validates and constructs a Principal. Missing actor or tenant
// identity rejects the request upstream; a missing name or unit scope does
// not, because those only suppress audit attribution, not access.
func NewPrincipal(actorID id.ActorID, actorName string, tenantID id.TenantID, unitID id.UnitID, role Role, now time.Time) (Principal, error) {
	if actorID.IsNil() {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "principal requires an actor id")
	}
	if tenantID.IsNil() {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "principal requires a tenant id")
	}
	return Principal{
		ActorID:   actorID,
		ActorName: actorName,
		TenantID:  tenantID,
		UnitID:    unitID,
		Role:      role,
		IssuedAt:  now,
	}, nil
}

// HasUnitScope reports whether the principal is bound to a school unit.
func (p Principal) HasUnitScope() bool { return !p.UnitID.IsNil() }

// IsManager reports whether the principal may read the unit's audit journal.
func (p Principal) IsManager() bool { return p.Role == RoleManager }
