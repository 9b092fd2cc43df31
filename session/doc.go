// Package session implements the Redis-backed session store for cookiegate.
//
// A session record maps an opaque session identifier (the login-token cookie
// value) to its current signed token string. Records expire purely through
// Redis TTLs: Save sets the TTL on every write, rotation overwrites the value
// under the same identifier, and there is no sweeper. The store is expected
// to run against a Redis logical database dedicated to sessions, separate
// from the permission cache.
//
// # Architecture boundaries
//
// This package owns key layout and availability classification. It knows
// nothing about token contents; callers treat the stored value as opaque.
package session
