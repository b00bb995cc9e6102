package domain

import "strings"

// EntityType names a kind of domain record ("Task", "Grade", "Class", ...).
// The set is open: domain modules register new kinds simply by using them.
// Comparisons are case-insensitive so "task" and "Task" address the same kind.
type EntityType string

// AuditEntryEntity is the journal's own record kind. Mutations against it are
// never audited; this constant is the anchor of the non-recursion law.
const AuditEntryEntity EntityType = "AuditEntry"

func (e EntityType) Normalize() string { return strings.ToLower(string(e)) }

func (e EntityType) Equals(other EntityType) bool {
	return e.Normalize() == other.Normalize()
}

// IsAuditEntry reports whether this entity type is the audit journal itself.
func (e EntityType) IsAuditEntry() bool { return e.Equals(AuditEntryEntity) }
