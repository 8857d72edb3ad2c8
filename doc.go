// Package rolesync reconciles local user, role, and grant state against a
// remote authorization gateway at login time.
//
// Reconciliation:
//   - The gateway is the source of truth for a user's role. Every login runs
//     one reconciliation pass: query the gateway, then provision, reactivate,
//     re-role, or deactivate the local user so it matches the answer. Users
//     are deactivated, never deleted.
//   - Exactly one role is meaningful per user: the first mapped role in the
//     gateway's response. The full mapped list is retained on the Result for
//     logging, but the engine never assigns more than one.
//   - All local writes of a pass run in a single transaction via
//     RepositoryManager.RunInTx, so a failed pass leaves prior state intact.
//
// Grant cascade:
//   - Crossing the administrator-role boundary fans out into per-resource
//     grant rows: promotion inserts one grant per existing resource for both
//     resource kinds, demotion deletes them all. Inserts use set semantics,
//     so a replayed promotion cannot duplicate rows.
//
// Failure isolation:
//   - A gateway outage (transport failure, non-200, unparseable body) rejects
//     the pass without touching local state, and is reported distinctly from
//     "gateway reachable but no role", which deactivates a stale user.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing provisioning,
//     reactivation, role changes, deactivation, and cascade events. Sinks run
//     best-effort (errors are logged) so auditing never blocks a login.
package rolesync
