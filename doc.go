// Package cookiegate provides cookie-based session authentication with
// per-request JWT rotation and Redis-backed permission gating.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// cookiegate is the public surface. It exposes [Engine], [Builder], [Config], and value
// types (Principal, MetricsSnapshot, AuditEvent, etc.). All internal coordination —
// flow orchestration, claim fallback resolution, audit dispatch — lives under internal/
// and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Import any sub-package that re-imports cookiegate (no import cycles).
//
// # Performance contract
//
// Authenticate is the hot path. It performs exactly one Redis read and one Redis write
// per successful call (session lookup plus rotated-token save); every rejection path
// performs at most the read. CheckPermission performs a single HGET.
package cookiegate
