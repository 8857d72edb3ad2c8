package rolesync

import (
	"context"
	"time"
)

// ActorRef identifies who/what triggered an event.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventUserProvisioned  ActivityEventType = "user.provisioned"
	ActivityEventUserReactivated  ActivityEventType = "user.reactivated"
	ActivityEventUserRoleChanged  ActivityEventType = "user.role.changed"
	ActivityEventUserDeactivated  ActivityEventType = "user.deactivated"
	ActivityEventGrantsPromoted   ActivityEventType = "grants.promoted"
	ActivityEventGrantsDemoted    ActivityEventType = "grants.demoted"
	ActivityEventReconcileAccept  ActivityEventType = "reconcile.accepted"
	ActivityEventReconcileReject  ActivityEventType = "reconcile.rejected"
)

// ActivityEvent captures audit-friendly information about one reconciliation
// side effect.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	Username   string
	FromRole   UserRole
	ToRole     UserRole
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
