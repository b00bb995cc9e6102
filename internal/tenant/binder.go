// Package tenant binds authenticated principals to context-bound store
// handles. All domain code routes mutations through a handle produced here;
// nothing else in the process holds a writable reference to the record store.
package tenant

import (
	"log/slog"

	"escolar/internal/audit"
	auditmetrics "escolar/internal/audit/metrics"
	"escolar/internal/store"
	"escolar/internal/tenant/models"
)

// Binder produces one context-bound handle per request. The underlying store
// and journal are process-wide and shared; the handle is not. Handing out a
// shared handle would leak one request's actor onto another's mutations, so
// Bind is the only constructor domain code gets.
type Binder struct {
	store   store.AuditableStore
	journal audit.Journal
	logger  *slog.Logger
	metrics *auditmetrics.Metrics
	sink    audit.FailureSink
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

func WithLogger(logger *slog.Logger) BinderOption {
	return func(b *Binder) { b.logger = logger }
}

func WithMetrics(m *auditmetrics.Metrics) BinderOption {
	return func(b *Binder) { b.metrics = m }
}

func WithFailureSink(sink audit.FailureSink) BinderOption {
	return func(b *Binder) { b.sink = sink }
}

// NewBinder wires the process-wide store and journal, built once at startup.
func NewBinder(s store.AuditableStore, journal audit.Journal, opts ...BinderOption) *Binder {
	b := &Binder{
		store:   s,
		journal: journal,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind returns the audited store handle for one request's principal. The
// handle lives for the request and is discarded with it.
func (b *Binder) Bind(principal models.Principal) *audit.Interceptor {
	return audit.NewInterceptor(b.store, b.journal, principal,
		audit.WithLogger(b.logger),
		audit.WithMetrics(b.metrics),
		audit.WithFailureSink(b.sink),
	)
}
