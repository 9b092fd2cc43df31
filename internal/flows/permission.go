package flows

import (
	"context"

	"github.com/formbridge/cookiegate/permission"
)

// PermissionFailureKind classifies permission gate failures for root-level mapping.
type PermissionFailureKind int

const (
	PermissionFailureNone PermissionFailureKind = iota
	PermissionFailureDenied
	PermissionFailureStore
)

// PermissionResult carries the gate decision or failure metadata.
type PermissionResult struct {
	Failure  PermissionFailureKind
	Err      error
	Decision permission.Decision
}

// PermissionDeps captures permission gate dependencies.
type PermissionDeps struct {
	LookupRecord func(ctx context.Context, userID, entity string) (permission.Record, bool, error)
}

// RunPermissionCheck looks up the permission record for (userID, entity) and
// intersects it with the requested operations.
//
// The two failure tiers are deliberate and must stay distinct: a missing
// record passes through with an empty decision (the caller sees zero grants
// but no rejection), while a record that exists yet intersects to nothing is
// an explicit denial.
func RunPermissionCheck(ctx context.Context, userID, entity string, ops []string, deps PermissionDeps) PermissionResult {
	record, found, err := deps.LookupRecord(ctx, userID, entity)
	if err != nil {
		return PermissionResult{Failure: PermissionFailureStore, Err: err}
	}

	if !found {
		return PermissionResult{
			Failure:  PermissionFailureNone,
			Decision: permission.Decision{Granted: permission.Record{}},
		}
	}

	granted := record.Grant(ops)
	if len(granted) == 0 {
		return PermissionResult{
			Failure:  PermissionFailureDenied,
			Decision: permission.Decision{Granted: granted, RecordFound: true},
		}
	}

	return PermissionResult{
		Failure:  PermissionFailureNone,
		Decision: permission.Decision{Granted: granted, RecordFound: true},
	}
}
