package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escolar/internal/tenant/models"
	id "escolar/pkg/domain"
	dErrors "escolar/pkg/domain-errors"
	"escolar/pkg/testutil"
)

func TestResolveRoundTrip(t *testing.T) {
	svc := NewService("test-key", "escolar")
	ctx := context.Background()

	t.Run("unit-scoped principal", func(t *testing.T) {
		principal := testutil.NewPrincipal("Maria", models.RoleTeacher)
		token, err := svc.GenerateToken(principal, time.Hour)
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, principal.ActorID, resolved.ActorID)
		assert.Equal(t, "Maria", resolved.ActorName)
		assert.Equal(t, principal.TenantID, resolved.TenantID)
		assert.Equal(t, principal.UnitID, resolved.UnitID)
		assert.Equal(t, models.RoleTeacher, resolved.Role)
	})

	t.Run("principal without unit scope", func(t *testing.T) {
		principal := testutil.NewPrincipal("Diretora", models.RoleManager)
		principal.UnitID = id.UnitID{}
		token, err := svc.GenerateToken(principal, time.Hour)
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.False(t, resolved.HasUnitScope())
	})
}

func TestResolveRejections(t *testing.T) {
	svc := NewService("test-key", "escolar")
	ctx := context.Background()
	principal := testutil.NewPrincipal("Maria", models.RoleTeacher)

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewService("other-key", "escolar")
		token, err := other.GenerateToken(principal, time.Hour)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewService("test-key", "someone-else")
		token, err := other.GenerateToken(principal, time.Hour)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, token)
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken(principal, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "not.a.jwt")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
