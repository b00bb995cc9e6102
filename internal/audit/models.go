// Package audit implements the tenant-scoped audit interception layer: a proxy
// over the generic record store that captures pre/post state for every
// successful mutation and appends an immutable journal entry attributed to the
// acting principal's unit scope.
package audit

import (
	"time"

	"escolar/internal/store"
	id "escolar/pkg/domain"
	dErrors "escolar/pkg/domain-errors"
)

// Action is the audit taxonomy a raw operation kind classifies into.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	// ActionUpsert tags both branches of an upsert; the insert and update
	// cases are not disambiguated.
	ActionUpsert Action = "UPSERT"
)

// OperationKind is the raw kind of a store mutation before classification.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
	OpUpsert OperationKind = "upsert"
)

// Classify maps an operation kind to its audit action. The mapping is total
// over the four supported kinds; anything else is a programming error and
// fails loudly rather than letting a mutation bypass auditing.
func Classify(kind OperationKind) (Action, error) {
	switch kind {
	case OpCreate:
		return ActionCreate, nil
	case OpUpdate:
		return ActionUpdate, nil
	case OpDelete:
		return ActionDelete, nil
	case OpUpsert:
		return ActionUpsert, nil
	default:
		return "", dErrors.New(dErrors.CodeInvariantViolation,
			"unclassifiable operation kind: "+string(kind))
	}
}

// OperationDescriptor is the ephemeral value describing one pending mutation
// as it passes through the interceptor. It is never persisted.
type OperationDescriptor struct {
	Kind     OperationKind
	Entity   id.EntityType
	Selector store.Selector
	Payload  store.Payload
}

// Entry is one immutable audit journal record. There is no update or delete
// path for entries anywhere in the system.
type Entry struct {
	ID           id.EntryID    `json:"id"`
	Action       Action        `json:"action"`
	EntityType   id.EntityType `json:"entityType"`
	EntityID     string        `json:"entityId"`
	Before       store.Record  `json:"beforeState,omitempty"`
	After        store.Record  `json:"afterState,omitempty"`
	ActorID      id.ActorID    `json:"actorId"`
	ActorName    string        `json:"actorName"`
	TenantUnitID id.UnitID     `json:"tenantUnitId"`
	RequestID    string        `json:"requestId,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Clone returns a copy safe to hand to callers; the snapshot maps are copied
// so journal internals stay immutable.
func (e Entry) Clone() Entry {
	clone := e
	clone.Before = e.Before.Clone()
	clone.After = e.After.Clone()
	return clone
}
