// Package permission implements the read-only Redis permission cache lookup
// for cookiegate.
//
// Permission records are owned and populated by an external authorization
// system: a Redis hash keyed by user id whose fields are entity names and
// whose values are JSON objects mapping operation names to truthy flags.
// This package only reads them. Absence of a record means zero permissions,
// never an error.
//
// Grant implements the deliberate OR semantics of the gate: possessing any
// one of the requested operations is sufficient, and the granted subset is
// returned to the caller.
package permission
