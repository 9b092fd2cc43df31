package cookiegate

import (
	"context"
	"errors"
	"time"

	"github.com/formbridge/cookiegate/permission"
	"github.com/formbridge/cookiegate/session"
	"github.com/formbridge/cookiegate/token"
)

const (
	auditEventAuthSuccess        = "auth_success"
	auditEventAuthFailure        = "auth_failure"
	auditEventSessionIssued      = "session_issued"
	auditEventSessionInvalidated = "session_invalidated"
	auditEventPermissionDenied   = "permission_denied"
)

// AuditErrorCode defines a public type used by cookiegate APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthenticated AuditErrorCode = "unauthenticated"
	auditErrSessionNotFound AuditErrorCode = "session_not_found"
	auditErrTokenExpired    AuditErrorCode = "token_expired"
	auditErrTokenInvalid    AuditErrorCode = "token_invalid"
	auditErrSecretMismatch  AuditErrorCode = "secret_mismatch"
	auditErrSessionMismatch AuditErrorCode = "session_mismatch"
	auditErrRotationFailed  AuditErrorCode = "rotation_failed"
	auditErrPermission      AuditErrorCode = "permission_denied"
	auditErrUnavailable     AuditErrorCode = "backend_unavailable"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	entity string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		Entity:    entity,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, token.ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, token.ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrSecretMismatch):
		return auditErrSecretMismatch
	case errors.Is(err, ErrSessionMismatch):
		return auditErrSessionMismatch
	case errors.Is(err, ErrRotationFailed):
		return auditErrRotationFailed
	case errors.Is(err, ErrInsufficientPermission):
		return auditErrPermission
	case errors.Is(err, session.ErrRedisUnavailable),
		errors.Is(err, permission.ErrRedisUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	default:
		return auditErrInternal
	}
}
