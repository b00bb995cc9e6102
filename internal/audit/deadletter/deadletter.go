// Package deadletter provides operational sinks for journal entries whose
// write failed. The business mutation is already committed at that point, so
// the sink exists to make the audit gap visible and replayable instead of
// silent.
package deadletter

import (
	"context"
	"log/slog"

	"escolar/internal/audit"
)

// Log reports failed entries to the operational log only. It is the fallback
// sink when no Redis is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Report(ctx context.Context, entry audit.Entry, cause error) {
	l.logger.ErrorContext(ctx, "audit entry dead-lettered",
		"entry_id", entry.ID.String(),
		"action", string(entry.Action),
		"entity_type", string(entry.EntityType),
		"entity_id", entry.EntityID,
		"tenant_unit_id", entry.TenantUnitID.String(),
		"cause", cause.Error(),
	)
}
