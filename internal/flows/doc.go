// Package flows contains the orchestration logic for cookiegate's two
// request-time operations: session authentication (lookup, validation,
// integrity checks, rotation) and the permission gate.
//
// Each flow takes its dependencies as a plain struct of functions so the
// root package can wire engines without this package importing it back
// (no import cycles), and returns an explicit result value carrying either
// the success payload or a classified failure kind. The root package maps
// kinds onto its sentinel errors; flows never panic and never use errors
// for control flow internally.
package flows
