// Package jwtauth resolves bearer tokens issued by the upstream
// authentication service into principals. Token issuance lives upstream; this
// package only validates and extracts claims.
package jwtauth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"escolar/internal/tenant/models"
	id "escolar/pkg/domain"
	dErrors "escolar/pkg/domain-errors"
)

// Claims are the claims the platform expects in an access token.
type Claims struct {
	ActorName string `json:"actor_name"`
	TenantID  string `json:"tenant_id"`
	UnitID    string `json:"unit_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Service validates access tokens and builds principals from their claims.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Resolve implements middleware.PrincipalResolver.
func (s *Service) Resolve(_ context.Context, token string) (models.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	actorID, err := id.ParseActorID(claims.Subject)
	if err != nil {
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token subject is not an actor id")
	}
	tenantID, err := id.ParseTenantID(claims.TenantID)
	if err != nil {
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token carries no tenant")
	}

	// Unit scope is optional: institution-level principals have none.
	var unitID id.UnitID
	if claims.UnitID != "" {
		unitID, err = id.ParseUnitID(claims.UnitID)
		if err != nil {
			return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "malformed unit id claim")
		}
	}

	return models.NewPrincipal(actorID, claims.ActorName, tenantID, unitID, models.Role(claims.Role), time.Now())
}

// GenerateToken signs an access token for the given principal. Used by tests
// and local tooling; production tokens come from the auth service.
func (s *Service) GenerateToken(p models.Principal, expiresIn time.Duration) (string, error) {
	claims := Claims{
		ActorName: p.ActorName,
		TenantID:  p.TenantID.String(),
		Role:      string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ActorID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	if p.HasUnitScope() {
		claims.UnitID = p.UnitID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}
