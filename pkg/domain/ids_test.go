package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "escolar/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseActorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseActorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseActorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseActorID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, ActorID(validUUID), id)
	})
}

// TestParseID_SecurityInvariants validates trust-boundary parsing rules:
// parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE records;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnitID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIDJSONRoundTrip(t *testing.T) {
	// Journal entries and API responses carry the typed IDs; they must
	// serialize as canonical UUID strings, not raw byte arrays.
	entryID := NewEntryID()
	body, err := json.Marshal(entryID)
	require.NoError(t, err)
	assert.Equal(t, `"`+entryID.String()+`"`, string(body))

	var decoded EntryID
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, entryID, decoded)

	var unit UnitID
	assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &unit))
}

func TestEntityType(t *testing.T) {
	t.Run("comparison is case-insensitive", func(t *testing.T) {
		assert.True(t, EntityType("Task").Equals("task"))
		assert.True(t, EntityType("TASK").Equals("Task"))
		assert.False(t, EntityType("Task").Equals("Grade"))
	})

	t.Run("audit entry type recognized in any casing", func(t *testing.T) {
		assert.True(t, AuditEntryEntity.IsAuditEntry())
		assert.True(t, EntityType("auditentry").IsAuditEntry())
		assert.False(t, EntityType("Task").IsAuditEntry())
	})
}
