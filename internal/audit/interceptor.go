package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	auditmetrics "escolar/internal/audit/metrics"
	"escolar/internal/store"
	"escolar/internal/tenant/models"
	id "escolar/pkg/domain"
	"escolar/pkg/platform/sentinel"
	"escolar/pkg/requestcontext"
)

// FailurePolicy names how the interceptor handles journal-write failures.
// Only best-effort is implemented: the alternative (rolling the business
// mutation back, or an outbox sharing its transaction) would require the
// journal and the record store to share a transaction boundary, which the
// AuditableStore abstraction does not promise.
type FailurePolicy string

// FailureBestEffort: a failed journal write is counted, reported to the
// failure sink, and logged; the committed business mutation is never rolled
// back and the caller never sees the failure.
const FailureBestEffort FailurePolicy = "best_effort"

// FailureSink receives entries whose journal write failed, so operations can
// alert on and replay silent audit gaps.
type FailureSink interface {
	Report(ctx context.Context, entry Entry, cause error)
}

// Interceptor is the context-bound store handle. It implements
// store.AuditableStore, so domain repositories are written against the same
// interface whether or not their mutations are audited.
//
// One Interceptor is built per request via tenant.Binder.Bind and carries that
// request's principal; it must not be shared across requests.
//
// Known consistency gap: the before-state snapshot and the mutation are two
// store interactions, not one transaction. A concurrent writer landing between
// them can make the recorded before-state differ from what the mutation
// actually overwrote.
type Interceptor struct {
	next      store.AuditableStore
	journal   Journal
	principal models.Principal
	logger    *slog.Logger
	metrics   *auditmetrics.Metrics
	sink      FailureSink
	now       func() time.Time
}

// Option configures an Interceptor.
type Option func(*Interceptor)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Interceptor) { i.logger = logger }
}

func WithMetrics(m *auditmetrics.Metrics) Option {
	return func(i *Interceptor) { i.metrics = m }
}

func WithFailureSink(sink FailureSink) Option {
	return func(i *Interceptor) { i.sink = sink }
}

// WithClock overrides the completion-time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) { i.now = now }
}

// NewInterceptor wraps the underlying store for one request's principal.
func NewInterceptor(next store.AuditableStore, journal Journal, principal models.Principal, opts ...Option) *Interceptor {
	i := &Interceptor{
		next:      next,
		journal:   journal,
		principal: principal,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interceptor) Create(ctx context.Context, entity id.EntityType, payload store.Payload) (store.Record, error) {
	return i.intercept(ctx, OperationDescriptor{Kind: OpCreate, Entity: entity, Payload: payload})
}

func (i *Interceptor) Update(ctx context.Context, entity id.EntityType, sel store.Selector, payload store.Payload) (store.Record, error) {
	return i.intercept(ctx, OperationDescriptor{Kind: OpUpdate, Entity: entity, Selector: sel, Payload: payload})
}

func (i *Interceptor) Delete(ctx context.Context, entity id.EntityType, sel store.Selector) (store.Record, error) {
	return i.intercept(ctx, OperationDescriptor{Kind: OpDelete, Entity: entity, Selector: sel})
}

func (i *Interceptor) Upsert(ctx context.Context, entity id.EntityType, sel store.Selector, payload store.Payload) (store.Record, error) {
	return i.intercept(ctx, OperationDescriptor{Kind: OpUpsert, Entity: entity, Selector: sel, Payload: payload})
}

// FindOne passes reads straight through; only mutations are audited.
func (i *Interceptor) FindOne(ctx context.Context, entity id.EntityType, sel store.Selector) (store.Record, error) {
	return i.next.FindOne(ctx, entity, sel)
}

// Do executes an operation described dynamically. It is the entry point for
// callers that carry the operation kind as data rather than as a method call.
func (i *Interceptor) Do(ctx context.Context, op OperationDescriptor) (store.Record, error) {
	return i.intercept(ctx, op)
}

// intercept runs the full pipeline: suppression check, snapshot, mutation,
// classification, journal write. The mutation result is returned to the
// caller unaffected by anything that happens after it succeeds.
func (i *Interceptor) intercept(ctx context.Context, op OperationDescriptor) (store.Record, error) {
	if !i.audited(op.Entity) {
		return i.execute(ctx, op)
	}

	// Classify before mutating: an unclassifiable kind must not silently
	// bypass auditing, so it fails the whole interception attempt.
	action, err := Classify(op.Kind)
	if err != nil {
		return nil, err
	}

	var before store.Record
	if action == ActionUpdate || action == ActionDelete {
		before = i.snapshot(ctx, op)
	}

	result, err := i.execute(ctx, op)
	if err != nil {
		// Failed mutations never produce journal entries.
		return nil, err
	}

	i.journalWrite(ctx, action, op, before, result)
	return result, nil
}

// audited reports whether mutations on the entity, under this principal,
// produce journal entries. Suppressed operations pass through untouched.
func (i *Interceptor) audited(entity id.EntityType) bool {
	if entity.IsAuditEntry() {
		return false
	}
	if !i.principal.HasUnitScope() {
		return false
	}
	if i.principal.ActorName == "" {
		return false
	}
	return true
}

func (i *Interceptor) execute(ctx context.Context, op OperationDescriptor) (store.Record, error) {
	switch op.Kind {
	case OpCreate:
		return i.next.Create(ctx, op.Entity, op.Payload)
	case OpUpdate:
		return i.next.Update(ctx, op.Entity, op.Selector, op.Payload)
	case OpDelete:
		return i.next.Delete(ctx, op.Entity, op.Selector)
	case OpUpsert:
		return i.next.Upsert(ctx, op.Entity, op.Selector, op.Payload)
	default:
		_, err := Classify(op.Kind)
		return nil, err
	}
}

// snapshot reads the pre-mutation state using the identical selector the
// mutation will use. A missing record is not an error: the mutation is free
// to fail on its own terms.
func (i *Interceptor) snapshot(ctx context.Context, op OperationDescriptor) store.Record {
	before, err := i.next.FindOne(ctx, op.Entity, op.Selector)
	if err == nil {
		return before
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		if i.metrics != nil {
			i.metrics.SnapshotMisses.Inc()
		}
		return nil
	}
	i.logger.WarnContext(ctx, "audit snapshot read failed",
		"entity_type", string(op.Entity),
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	return nil
}

// journalWrite assembles and appends the entry for a committed mutation.
// Failures are reported operationally and never reach the caller.
func (i *Interceptor) journalWrite(ctx context.Context, action Action, op OperationDescriptor, before, result store.Record) {
	entityID := result.ID()
	if entityID == "" && before != nil {
		entityID = before.ID()
	}

	entry := Entry{
		ID:           id.NewEntryID(),
		Action:       action,
		EntityType:   op.Entity,
		EntityID:     entityID,
		Before:       before.Clone(),
		After:        i.afterState(action, op, result),
		ActorID:      i.principal.ActorID,
		ActorName:    i.principal.ActorName,
		TenantUnitID: i.principal.UnitID,
		RequestID:    requestcontext.RequestID(ctx),
		Timestamp:    i.now(),
	}

	// Every audited mutation must resolve an id before being logged.
	if entry.EntityID == "" {
		err := errors.New("mutation result carries no record id")
		i.reportFailure(ctx, entry, err)
		return
	}

	// Detach from request cancellation: once the business mutation committed,
	// abandoning the journal write would only widen the audit gap.
	writeCtx := context.WithoutCancel(ctx)
	if err := i.journal.Append(writeCtx, entry); err != nil {
		i.reportFailure(writeCtx, entry, err)
		return
	}
	if i.metrics != nil {
		i.metrics.IncrementEntriesWritten(string(action))
	}
}

// afterState picks the effective post-mutation payload per action: the full
// created record for CREATE, the applied payload for UPDATE/UPSERT, nothing
// for DELETE.
func (i *Interceptor) afterState(action Action, op OperationDescriptor, result store.Record) store.Record {
	switch action {
	case ActionCreate:
		return result.Clone()
	case ActionUpdate, ActionUpsert:
		return store.Record(op.Payload).Clone()
	default:
		return nil
	}
}

func (i *Interceptor) reportFailure(ctx context.Context, entry Entry, cause error) {
	if i.metrics != nil {
		i.metrics.JournalFailures.Inc()
	}
	i.logger.ErrorContext(ctx, "audit journal write failed",
		"action", string(entry.Action),
		"entity_type", string(entry.EntityType),
		"entity_id", entry.EntityID,
		"tenant_unit_id", entry.TenantUnitID.String(),
		"request_id", entry.RequestID,
		"error", cause.Error(),
	)
	if i.sink != nil {
		i.sink.Report(ctx, entry, cause)
	}
}
