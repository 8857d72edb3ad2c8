package rolesync

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rolesync/gateway"
	"github.com/uptrace/bun"
)

// Outcome is the terminal result of one reconciliation pass.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// RejectReason explains a rejected pass. GatewayUnavailable is kept separate
// from NotAuthorized so operators can tell outages from bad credentials.
type RejectReason string

const (
	RejectNone               RejectReason = ""
	RejectGatewayUnavailable RejectReason = "gateway_unavailable"
	RejectNotAuthorized      RejectReason = "not_authorized"
)

// Transition is the local mutation a pass performed, if any.
type Transition string

const (
	TransitionNone        Transition = "none"
	TransitionProvisioned Transition = "provisioned"
	TransitionReactivated Transition = "reactivated"
	TransitionRoleChanged Transition = "role_changed"
	TransitionUnchanged   Transition = "unchanged"
	TransitionDeactivated Transition = "deactivated"
)

// Result describes what one reconciliation pass did.
type Result struct {
	Outcome    Outcome
	Reason     RejectReason
	Transition Transition

	// User is the reconciled record after all mutations. Nil when the pass
	// never produced or touched a local user.
	User *User

	// Roles is the mapped role list the gateway reported, in document order.
	// Only Roles[0] is ever assigned; the rest are informational.
	Roles []UserRole

	// Path is the list of engine states the pass moved through.
	Path []ReconcileState
}

// Accepted reports whether the pass grants a session.
func (r *Result) Accepted() bool {
	return r != nil && r.Outcome == OutcomeAccepted
}

// Validate checks that credentials are usable for a gateway query.
func (c Credentials) Validate() error {
	if c.Authenticated {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// Engine reconciles local user/role/grant state against the gateway's answer
// for one login attempt. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	repo      RepositoryManager
	source    RoleSource
	cascade   *GrantCascade
	adminRole UserRole
	sink      ActivitySink
	logger    Logger
	now       func() time.Time
}

var _ Reconciler = (*Engine)(nil)

type EngineOption func(*Engine)

// WithEngineLogger overrides the default logger.
func WithEngineLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineActivitySink sets the sink that receives reconciliation events.
func WithEngineActivitySink(sink ActivitySink) EngineOption {
	return func(e *Engine) {
		e.sink = normalizeActivitySink(sink)
	}
}

// WithEngineAdminRole designates the role name that triggers the grant
// cascade. Defaults to "Admin".
func WithEngineAdminRole(role UserRole) EngineOption {
	return func(e *Engine) {
		if role != "" {
			e.adminRole = role
		}
	}
}

// WithEngineClock injects a custom clock (useful for tests).
func WithEngineClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// NewEngine wires a reconciliation engine over the given repositories and
// role source.
func NewEngine(repo RepositoryManager, source RoleSource, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:      repo,
		source:    source,
		cascade:   NewGrantCascade(repo.Grants()),
		adminRole: "Admin",
		sink:      noopActivitySink{},
		logger:    defLogger{},
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// Reconcile runs one pass for a login attempt. Rejected passes return a
// non-nil Result alongside the rejection error so callers can inspect both;
// store failures return a nil Result and the bare error.
func (e *Engine) Reconcile(ctx context.Context, creds Credentials) (*Result, error) {
	sm := NewReconcileStateMachine()

	if creds.Authenticated {
		e.advance(sm, StateAccepted)
		return &Result{
			Outcome:    OutcomeAccepted,
			Transition: TransitionNone,
			Path:       sm.Path(),
		}, nil
	}

	if err := creds.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid credentials").
			WithCode(goerrors.CodeBadRequest)
	}

	roles, err := e.source.GetUserRoles(ctx, creds.Username, creds.Password)
	if err != nil {
		// Outages and protocol breakage both reject without touching local
		// state. The underlying error keeps them distinguishable in logs.
		e.logger.Error("gateway query failed for %s: %v", creds.Username, err)
		e.advance(sm, StateRejected)
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventReconcileReject,
			Username:  creds.Username,
			Metadata: map[string]any{
				"reason": string(RejectGatewayUnavailable),
				"error":  err.Error(),
			},
		})

		rejection := ErrGatewayUnavailable
		var protoErr *gateway.ProtocolError
		if errors.As(err, &protoErr) {
			rejection = ErrGatewayProtocol
		}

		return &Result{
			Outcome: OutcomeRejected,
			Reason:  RejectGatewayUnavailable,
			Path:    sm.Path(),
		}, rejection.Clone().WithMetadata(map[string]any{
			"username": creds.Username,
		})
	}

	e.advance(sm, StateGatewayQueried)

	if len(roles) > 0 {
		return e.acceptWithRoles(ctx, sm, creds.Username, roles)
	}

	return e.rejectWithoutRoles(ctx, sm, creds.Username)
}

// acceptWithRoles reconciles a user the gateway still vouches for. Only
// roles[0] matters; additional mapped roles are reported but never assigned.
func (e *Engine) acceptWithRoles(ctx context.Context, sm *ReconcileStateMachine, username string, roles []UserRole) (*Result, error) {
	e.advance(sm, StateRolesPresent)

	target := roles[0]
	transition := TransitionUnchanged

	var user *User
	var fromRole UserRole
	var promoted, demoted bool

	err := e.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := e.repo.Users().FindByUsernameTx(ctx, tx, username)
		if err != nil && !repository.IsRecordNotFound(err) {
			return err
		}

		if existing == nil || repository.IsRecordNotFound(err) {
			created, err := e.repo.Users().CreateTx(ctx, tx, NewProvisionedUser(username, target))
			if err != nil {
				return err
			}
			user = created
			transition = TransitionProvisioned

			if target == e.adminRole {
				if _, err := e.cascade.PromoteTx(ctx, tx, user.ID); err != nil {
					return err
				}
				promoted = true
			}
			return nil
		}

		user = existing
		fromRole = existing.Role
		reactivated := false

		if !existing.Active {
			updated, err := e.repo.Users().SetActiveTx(ctx, tx, existing.ID, true)
			if err != nil {
				return err
			}
			user = updated
			reactivated = true
			transition = TransitionReactivated
		}

		if fromRole != target {
			updated, err := e.repo.Users().UpdateRoleTx(ctx, tx, existing.ID, target)
			if err != nil {
				return err
			}
			if updated != nil {
				user = updated
			}
			user.Role = target
			user.Active = true
			// A reactivation that also changes role reports as a role change.
			transition = TransitionRoleChanged

			switch {
			case fromRole == e.adminRole && target != e.adminRole:
				if _, err := e.cascade.DemoteTx(ctx, tx, existing.ID); err != nil {
					return err
				}
				demoted = true
			case fromRole != e.adminRole && target == e.adminRole:
				if _, err := e.cascade.PromoteTx(ctx, tx, existing.ID); err != nil {
					return err
				}
				promoted = true
			}
		} else if reactivated {
			user.Active = true
		}

		return nil
	})

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "reconciliation write failed").
			WithCode(goerrors.CodeInternal).
			WithMetadata(map[string]any{
				"username": username,
			})
	}

	switch transition {
	case TransitionProvisioned:
		e.advance(sm, StateProvisioned)
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventUserProvisioned,
			UserID:    user.ID.String(),
			Username:  username,
			ToRole:    target,
		})
	case TransitionReactivated:
		e.advance(sm, StateReactivated)
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventUserReactivated,
			UserID:    user.ID.String(),
			Username:  username,
			ToRole:    target,
		})
	case TransitionRoleChanged:
		e.advance(sm, StateRoleChanged)
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventUserRoleChanged,
			UserID:    user.ID.String(),
			Username:  username,
			FromRole:  fromRole,
			ToRole:    target,
		})
	default:
		e.advance(sm, StateUnchanged)
	}

	if promoted {
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventGrantsPromoted,
			UserID:    user.ID.String(),
			Username:  username,
			ToRole:    target,
		})
	}
	if demoted {
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventGrantsDemoted,
			UserID:    user.ID.String(),
			Username:  username,
			FromRole:  fromRole,
			ToRole:    target,
		})
	}

	e.advance(sm, StateAccepted)
	e.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventReconcileAccept,
		UserID:    user.ID.String(),
		Username:  username,
		ToRole:    target,
	})

	return &Result{
		Outcome:    OutcomeAccepted,
		Transition: transition,
		User:       user,
		Roles:      roles,
		Path:       sm.Path(),
	}, nil
}

// rejectWithoutRoles handles a reachable gateway that reports no usable role.
// An existing active user is deactivated, never deleted, and grants are left
// alone.
func (e *Engine) rejectWithoutRoles(ctx context.Context, sm *ReconcileStateMachine, username string) (*Result, error) {
	e.advance(sm, StateNoRoles)

	transition := TransitionNone
	var user *User

	err := e.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := e.repo.Users().FindByUsernameTx(ctx, tx, username)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		user = existing
		if !existing.Active {
			return nil
		}

		updated, err := e.repo.Users().SetActiveTx(ctx, tx, existing.ID, false)
		if err != nil {
			return err
		}
		user = updated
		transition = TransitionDeactivated
		return nil
	})

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "reconciliation write failed").
			WithCode(goerrors.CodeInternal).
			WithMetadata(map[string]any{
				"username": username,
			})
	}

	if transition == TransitionDeactivated {
		e.advance(sm, StateDeactivated)
		e.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventUserDeactivated,
			UserID:    user.ID.String(),
			Username:  username,
			FromRole:  user.Role,
		})
	}

	e.advance(sm, StateRejected)
	e.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventReconcileReject,
		Username:  username,
		Metadata: map[string]any{
			"reason": string(RejectNotAuthorized),
		},
	})

	return &Result{
		Outcome:    OutcomeRejected,
		Reason:     RejectNotAuthorized,
		Transition: transition,
		User:       user,
		Path:       sm.Path(),
	}, ErrNotAuthorized.Clone().WithMetadata(map[string]any{
		"username": username,
	})
}

func (e *Engine) advance(sm *ReconcileStateMachine, target ReconcileState) {
	if err := sm.Advance(target); err != nil {
		e.logger.Warn("state machine advance to %s failed: %v", target, err)
	}
}

func (e *Engine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}

	sink := normalizeActivitySink(e.sink)
	if err := sink.Record(ctx, event); err != nil {
		e.logger.Warn("reconcile activity sink error: %v", err)
	}
}
