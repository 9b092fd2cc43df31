package internaldefs

import (
	cookiegate "github.com/formbridge/cookiegate"
)

// CounterDef defines a public type used by cookiegate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   cookiegate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by cookiegate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   cookiegate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session gate engine.
var CounterDefs = []CounterDef{
	{ID: cookiegate.MetricAuthSuccess, Name: "cookiegate_auth_success_total", Help: "Successful session authentications."},
	{ID: cookiegate.MetricAuthFailure, Name: "cookiegate_auth_failure_total", Help: "Rejected session authentications."},
	{ID: cookiegate.MetricSessionNotFound, Name: "cookiegate_session_not_found_total", Help: "Authentications rejected because no stored session existed."},
	{ID: cookiegate.MetricTokenExpired, Name: "cookiegate_token_expired_total", Help: "Authentications rejected for expired stored tokens."},
	{ID: cookiegate.MetricTokenInvalid, Name: "cookiegate_token_invalid_total", Help: "Authentications rejected for structurally invalid stored tokens."},
	{ID: cookiegate.MetricSecretMismatch, Name: "cookiegate_secret_mismatch_total", Help: "Authentications rejected for internal secret mismatches."},
	{ID: cookiegate.MetricSessionMismatch, Name: "cookiegate_session_mismatch_total", Help: "Authentications rejected for cross-session token replay."},
	{ID: cookiegate.MetricRotationFailure, Name: "cookiegate_rotation_failure_total", Help: "Failed session token rotations."},
	{ID: cookiegate.MetricSessionIssued, Name: "cookiegate_session_issued_total", Help: "Issued sessions."},
	{ID: cookiegate.MetricSessionInvalidated, Name: "cookiegate_session_invalidated_total", Help: "Invalidated sessions."},
	{ID: cookiegate.MetricRequestTokenIssued, Name: "cookiegate_request_token_issued_total", Help: "Issued long-lived request tokens."},
	{ID: cookiegate.MetricPermissionAllowed, Name: "cookiegate_permission_allowed_total", Help: "Permission checks granting at least one requested operation."},
	{ID: cookiegate.MetricPermissionDenied, Name: "cookiegate_permission_denied_total", Help: "Permission checks denied by an existing record."},
	{ID: cookiegate.MetricPermissionRecordMissing, Name: "cookiegate_permission_record_missing_total", Help: "Permission checks passing through with no record."},
	{ID: cookiegate.MetricStoreUnavailable, Name: "cookiegate_store_unavailable_total", Help: "Operations failed by an unavailable backing store."},
}

// HistogramDefs is an exported constant or variable used by the session gate engine.
var HistogramDefs = []HistogramDef{
	{ID: cookiegate.MetricAuthLatency, Name: "cookiegate_auth_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBoundSuffix is an exported constant or variable used by the session gate engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// HistogramUpperBounds is an exported constant or variable used by the session gate engine.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
