// Package middleware exposes HTTP middleware adapters for cookie session
// authentication and permission gating built on top of cookiegate.Engine.
//
// # Guards
//
//   - [CookieAuth] — session cookie/header authentication with per-request
//     token rotation and Set-Cookie refresh.
//   - [RequirePermission] — entity/operation permission gating.
//   - [Meta] / [MetaLite] — request identity extraction without enforcement.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself — all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine results.
package middleware
