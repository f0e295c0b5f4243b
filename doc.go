// Package gateway provides session-gated access control for HTTP apps: an
// edge gate that classifies request paths and validates opaque credentials
// against a pluggable SessionProvider, plus the client-side pieces that
// enforce the same policy after asynchronous renders.
//
// Gate path:
//   - RouteTable enumerates public pages, public API prefixes, and the
//     identity provider's own routes as data. EdgeGate.Handle resolves every
//     other path against the SessionProvider and decides allow or redirect,
//     always failing closed when the provider is slow or unreachable.
//   - middleware/gateware adapts the gate to go-router so it runs before any
//     business handler.
//
// Client path:
//   - RouteGuard is a tri-state machine (loading, unauthenticated,
//     authenticated) for content whose session fetch resolves asynchronously;
//     it issues at most one redirect per mount.
//   - RetryPolicy wraps session-bound operations: unauthorized failures spend
//     the budget on re-authentication instead of futile retries.
//
// Auditing:
//   - ActivityAuditor buffers UserActivity records on a bounded channel and
//     dispatches them to an AuditSink from a background worker. Recording is
//     best-effort (failures are logged, never surfaced) so audit can never
//     become a correctness dependency for the action being audited. Sinks for
//     HTTP endpoints and bun-backed tables live under sink/.
package gateway
