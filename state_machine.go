package rolesync

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_RECONCILE_TRANSITION"
	textCodeTerminalState     = "TERMINAL_RECONCILE_STATE"
)

// ErrInvalidTransition is returned when a requested state change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid reconcile state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned when attempting to move away from a terminal state.
var ErrTerminalState = goerrors.New("reconcile state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState).
	WithCode(goerrors.CodeConflict)

// ReconcileState is one step of a reconciliation pass.
type ReconcileState string

const (
	// StateStart is the initial state of every pass.
	StateStart ReconcileState = "start"
	// StateGatewayQueried means the gateway answered, for better or worse.
	StateGatewayQueried ReconcileState = "gateway_queried"
	// StateRolesPresent means at least one gateway role mapped to a local role.
	StateRolesPresent ReconcileState = "roles_present"
	// StateNoRoles means the gateway reported no role the engine recognizes.
	StateNoRoles ReconcileState = "no_roles"
	// StateProvisioned means a new local user was created for this login.
	StateProvisioned ReconcileState = "provisioned"
	// StateReactivated means a previously deactivated user came back.
	StateReactivated ReconcileState = "reactivated"
	// StateRoleChanged means the stored role moved to match the gateway.
	StateRoleChanged ReconcileState = "role_changed"
	// StateUnchanged means local state already matched the gateway.
	StateUnchanged ReconcileState = "unchanged"
	// StateDeactivated means an existing user lost authorization.
	StateDeactivated ReconcileState = "deactivated"
	// StateAccepted terminates a pass that grants a session.
	StateAccepted ReconcileState = "accepted"
	// StateRejected terminates a pass that denies a session.
	StateRejected ReconcileState = "rejected"
)

// ReconcileStateMachine tracks the progress of a single reconciliation pass
// and enforces that it only ever moves along legal edges.
type ReconcileStateMachine struct {
	current     ReconcileState
	path        []ReconcileState
	transitions map[ReconcileState]map[ReconcileState]struct{}
}

// NewReconcileStateMachine returns a machine positioned at StateStart.
func NewReconcileStateMachine() *ReconcileStateMachine {
	return &ReconcileStateMachine{
		current: StateStart,
		path:    []ReconcileState{StateStart},
		transitions: map[ReconcileState]map[ReconcileState]struct{}{
			StateStart: {
				StateGatewayQueried: {},
				// Authenticated callers skip the gateway entirely.
				StateAccepted: {},
				// Gateway outage rejects without touching local state.
				StateRejected: {},
			},
			StateGatewayQueried: {
				StateRolesPresent: {},
				StateNoRoles:      {},
			},
			StateRolesPresent: {
				StateProvisioned: {},
				StateReactivated: {},
				StateRoleChanged: {},
				StateUnchanged:   {},
			},
			StateNoRoles: {
				StateDeactivated: {},
				// Unknown user with no roles rejects without a local record.
				StateRejected: {},
			},
			StateProvisioned: {
				StateAccepted: {},
			},
			StateReactivated: {
				StateAccepted: {},
			},
			StateRoleChanged: {
				StateAccepted: {},
			},
			StateUnchanged: {
				StateAccepted: {},
			},
			StateDeactivated: {
				StateRejected: {},
			},
		},
	}
}

// Advance moves the machine to the target state or fails with
// ErrInvalidTransition/ErrTerminalState.
func (sm *ReconcileStateMachine) Advance(target ReconcileState) error {
	if target == "" {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "target state is empty",
		})
	}

	if sm.current == StateAccepted || sm.current == StateRejected {
		return ErrTerminalState.WithMetadata(map[string]any{
			"from": sm.current,
			"to":   target,
		})
	}

	if !sm.canAdvance(sm.current, target) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": sm.current,
			"to":   target,
		})
	}

	sm.current = target
	sm.path = append(sm.path, target)
	return nil
}

// Current returns the state the machine is in.
func (sm *ReconcileStateMachine) Current() ReconcileState {
	return sm.current
}

// Done reports whether the pass reached a terminal state.
func (sm *ReconcileStateMachine) Done() bool {
	return sm.current == StateAccepted || sm.current == StateRejected
}

// Path returns the states visited so far, in order.
func (sm *ReconcileStateMachine) Path() []ReconcileState {
	out := make([]ReconcileState, len(sm.path))
	copy(out, sm.path)
	return out
}

func (sm *ReconcileStateMachine) canAdvance(from, to ReconcileState) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}
