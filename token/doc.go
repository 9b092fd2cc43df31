// Package token implements the signed session-token codec used by cookiegate.
//
// # Design
//
// Tokens are HS256 JWTs. The payload carries the authenticated user, the
// session identifier the token is bound to (uid), the internal shared secret
// (token), the session lifetime in minutes (age), and the requester IP.
// Encoding stamps a fresh request id, issuer, and issued-at; validation
// verifies the signature and expiry and nothing else — integrity checks
// against the presenting session are the caller's responsibility.
//
// # Architecture boundaries
//
// This package owns serialization and signature verification only. It performs
// no I/O beyond a wall-clock read and must not import any sibling package.
package token
