// Package domain defines the typed identifiers and entity tags shared across
// the platform. IDs are distinct types over uuid.UUID so an actor ID can never
// be passed where a unit ID is expected; the compiler enforces the boundary.
package domain

import (
	"github.com/google/uuid"

	dErrors "escolar/pkg/domain-errors"
)

type (
	// ActorID identifies the authenticated person performing a mutation.
	ActorID uuid.UUID
	// TenantID identifies an institution, the top-level organizational boundary.
	TenantID uuid.UUID
	// UnitID identifies a school unit, the scope audit entries are partitioned by.
	UnitID uuid.UUID
	// EntryID identifies a single audit journal entry.
	EntryID uuid.UUID
)

// parseUUID enforces the parsing invariant shared by all typed IDs:
// IDs must be valid, non-empty, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil UUID")
	}
	return parsed, nil
}

func ParseActorID(raw string) (ActorID, error) {
	parsed, err := parseUUID(raw, "actor")
	return ActorID(parsed), err
}

func ParseTenantID(raw string) (TenantID, error) {
	parsed, err := parseUUID(raw, "tenant")
	return TenantID(parsed), err
}

func ParseUnitID(raw string) (UnitID, error) {
	parsed, err := parseUUID(raw, "unit")
	return UnitID(parsed), err
}

func ParseEntryID(raw string) (EntryID, error) {
	parsed, err := parseUUID(raw, "entry")
	return EntryID(parsed), err
}

func NewEntryID() EntryID { return EntryID(uuid.New()) }

func (id ActorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UnitID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id ActorID) String() string  { return uuid.UUID(id).String() }
func (id TenantID) String() string { return uuid.UUID(id).String() }
func (id UnitID) String() string   { return uuid.UUID(id).String() }
func (id EntryID) String() string  { return uuid.UUID(id).String() }

// The typed IDs serialize as canonical UUID strings; a defined type over
// uuid.UUID does not inherit its marshaling methods.

func (id ActorID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id TenantID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id UnitID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id EntryID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *ActorID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = ActorID(parsed)
	return nil
}

func (id *TenantID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = TenantID(parsed)
	return nil
}

func (id *UnitID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = UnitID(parsed)
	return nil
}

func (id *EntryID) UnmarshalText(data []byte) error {
	parsed, err := uuid.ParseBytes(data)
	if err != nil {
		return err
	}
	*id = EntryID(parsed)
	return nil
}
