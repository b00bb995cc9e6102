package deadletter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"escolar/internal/audit"
)

// ListKey is the Redis list failed entries are pushed onto. An external
// alerting pipeline consumes it; this process only produces.
const ListKey = "escolar:audit:deadletter"

// reportTimeout bounds the push so a slow Redis cannot stall the request
// that already finished its business mutation.
const reportTimeout = 2 * time.Second

// Redis pushes failed journal entries onto a Redis list. Push failures fall
// back to the operational log; the dead-letter path itself is best-effort.
type Redis struct {
	client redis.Cmdable
	logger *slog.Logger
}

func NewRedis(client redis.Cmdable, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

// payload is the JSON document pushed to the list.
type payload struct {
	Entry      audit.Entry `json:"entry"`
	Cause      string      `json:"cause"`
	ReportedAt time.Time   `json:"reportedAt"`
}

func (r *Redis) Report(ctx context.Context, entry audit.Entry, cause error) {
	body, err := json.Marshal(payload{
		Entry:      entry,
		Cause:      cause.Error(),
		ReportedAt: time.Now(),
	})
	if err != nil {
		r.logFallback(ctx, entry, cause, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	if err := r.client.RPush(ctx, ListKey, body).Err(); err != nil {
		r.logFallback(ctx, entry, cause, err)
	}
}

func (r *Redis) logFallback(ctx context.Context, entry audit.Entry, cause, pushErr error) {
	r.logger.ErrorContext(ctx, "audit dead-letter push failed",
		"entry_id", entry.ID.String(),
		"entity_type", string(entry.EntityType),
		"entity_id", entry.EntityID,
		"cause", cause.Error(),
		"error", pushErr.Error(),
	)
}
