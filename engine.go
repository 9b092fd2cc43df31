package cookiegate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/formbridge/cookiegate/internal/audit"
	"github.com/formbridge/cookiegate/internal/flows"
	"github.com/formbridge/cookiegate/permission"
	"github.com/formbridge/cookiegate/session"
	"github.com/formbridge/cookiegate/token"
)

// Engine defines a public type used by cookiegate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config          Config
	tokenManager    *token.Manager
	sessionStore    *session.Store
	permissionStore *permission.Store
	audit           *audit.Dispatcher
	metrics         *Metrics
	warnf           func(string, ...any)
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CookieSettings returns the cookie attributes middleware must apply when
// writing the session cookie.
func (e *Engine) CookieSettings() CookieConfig {
	if e == nil {
		return CookieConfig{}
	}
	return e.config.Cookie
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) lockoutMinutes() int {
	m := int(e.config.Cookie.LockoutDuration / time.Minute)
	if m <= 0 {
		m = 1
	}
	return m
}

// Authenticate validates the session identified by sessionID, rotates its
// token under the same session identifier, and returns the authenticated
// principal carrying the fresh token.
//
// Failures classify under [ErrUnauthenticated] except for backend faults:
// [session.ErrRedisUnavailable] and [ErrRotationFailed] surface as-is so
// callers can distinguish a broken backend from a rejected caller.
//
//	Docs: docs/engine.md
func (e *Engine) Authenticate(ctx context.Context, sessionID string) (*Principal, error) {
	if e == nil || e.sessionStore == nil || e.tokenManager == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()

	internal := []byte(e.config.Token.InternalToken)
	res := flows.RunAuthenticate(ctx, sessionID, flows.AuthenticateDeps{
		LookupToken:   e.sessionStore.Get,
		ValidateToken: e.tokenManager.Validate,
		SecretMatches: func(embedded string) bool {
			return subtle.ConstantTimeCompare([]byte(embedded), internal) == 1
		},
		MintToken: func(claims token.SessionClaims) (string, error) {
			claims.Internal = e.config.Token.InternalToken
			return e.tokenManager.Encode(claims)
		},
		SaveToken:         e.sessionStore.Save,
		ClientIP:          clientIPFromContext,
		DefaultAgeMinutes: e.lockoutMinutes(),
		RedisNil:          redis.Nil,
	})

	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricAuthLatency, time.Since(start))
	}

	switch res.Failure {
	case flows.AuthFailureNone:
		e.metricInc(MetricAuthSuccess)
		e.emitAudit(ctx, auditEventAuthSuccess, true, res.UserID, res.SessionID, "", nil, nil)
		return &Principal{
			UserID:     res.UserID,
			SessionID:  res.SessionID,
			Token:      res.Token,
			AgeMinutes: res.AgeMinutes,
		}, nil

	case flows.AuthFailureMissingSession:
		e.metricInc(MetricAuthFailure)
		return nil, fmt.Errorf("%w: missing session identifier", ErrUnauthenticated)

	case flows.AuthFailureSessionNotFound:
		e.metricInc(MetricAuthFailure)
		e.metricInc(MetricSessionNotFound)
		err := errors.Join(ErrUnauthenticated, ErrSessionNotFound)
		e.emitAudit(ctx, auditEventAuthFailure, false, "", res.SessionID, "", err, nil)
		return nil, err

	case flows.AuthFailureValidate:
		e.metricInc(MetricAuthFailure)
		if errors.Is(res.Err, token.ErrTokenExpired) {
			e.metricInc(MetricTokenExpired)
		} else {
			e.metricInc(MetricTokenInvalid)
		}
		err := errors.Join(ErrUnauthenticated, res.Err)
		e.emitAudit(ctx, auditEventAuthFailure, false, "", res.SessionID, "", err, nil)
		return nil, err

	case flows.AuthFailureSecretMismatch:
		e.metricInc(MetricAuthFailure)
		e.metricInc(MetricSecretMismatch)
		err := errors.Join(ErrUnauthenticated, ErrSecretMismatch)
		e.emitAudit(ctx, auditEventAuthFailure, false, "", res.SessionID, "", err, nil)
		return nil, err

	case flows.AuthFailureSessionMismatch:
		e.metricInc(MetricAuthFailure)
		e.metricInc(MetricSessionMismatch)
		err := errors.Join(ErrUnauthenticated, ErrSessionMismatch)
		e.emitAudit(ctx, auditEventAuthFailure, false, res.UserID, res.SessionID, "", err, nil)
		return nil, err

	case flows.AuthFailureRotate:
		e.metricInc(MetricRotationFailure)
		e.warnf("cookiegate: token rotation failed for session %s: %v", res.SessionID, res.Err)
		err := fmt.Errorf("%w: %v", ErrRotationFailed, res.Err)
		e.emitAudit(ctx, auditEventAuthFailure, false, res.UserID, res.SessionID, "", err, nil)
		return nil, err

	default: // flows.AuthFailureStore
		e.metricInc(MetricStoreUnavailable)
		e.warnf("cookiegate: session store unavailable: %v", res.Err)
		e.emitAudit(ctx, auditEventAuthFailure, false, res.UserID, res.SessionID, "", res.Err, nil)
		return nil, res.Err
	}
}

// CheckPermission looks up the permission record for (userID, entity) and
// intersects it with the requested operations.
//
// A record that exists but grants none of the requested operations returns
// [ErrInsufficientPermission]. A missing record returns an empty decision
// and a nil error; the permission cache is advisory and absence of an entry
// is not a rejection.
//
//	Docs: docs/permission.md
func (e *Engine) CheckPermission(ctx context.Context, userID, entity string, ops []string) (permission.Decision, error) {
	if e == nil || e.permissionStore == nil {
		return permission.Decision{}, ErrEngineNotReady
	}

	res := flows.RunPermissionCheck(ctx, userID, entity, ops, flows.PermissionDeps{
		LookupRecord: e.permissionStore.Get,
	})

	switch res.Failure {
	case flows.PermissionFailureDenied:
		e.metricInc(MetricPermissionDenied)
		e.emitAudit(ctx, auditEventPermissionDenied, false, userID, "", entity, ErrInsufficientPermission, nil)
		return res.Decision, ErrInsufficientPermission

	case flows.PermissionFailureStore:
		e.metricInc(MetricStoreUnavailable)
		e.warnf("cookiegate: permission lookup failed for user %s entity %s: %v", userID, entity, res.Err)
		return permission.Decision{}, res.Err

	default:
		if res.Decision.RecordFound {
			e.metricInc(MetricPermissionAllowed)
		} else {
			e.metricInc(MetricPermissionRecordMissing)
		}
		return res.Decision, nil
	}
}

// IssueSession mints a new session for userID: a fresh session identifier,
// a token bound to it, and a store write with the lock-out TTL. The returned
// sessionID is what callers hand to the client as the session cookie value;
// the token is the stored credential that [Engine.Authenticate] verifies and
// rotates on every hit.
//
//	Docs: docs/engine.md
func (e *Engine) IssueSession(ctx context.Context, userID string) (string, string, error) {
	if e == nil || e.sessionStore == nil || e.tokenManager == nil {
		return "", "", ErrEngineNotReady
	}
	if userID == "" {
		return "", "", fmt.Errorf("%w: empty user id", ErrSessionCreationFailed)
	}

	sessionID := uuid.NewString()
	age := e.lockoutMinutes()

	tokenStr, err := e.tokenManager.Encode(token.SessionClaims{
		UserID:     userID,
		UID:        sessionID,
		Internal:   e.config.Token.InternalToken,
		AgeMinutes: age,
		IP:         clientIPFromContext(ctx),
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
	}

	if err := e.sessionStore.Save(ctx, sessionID, tokenStr, time.Duration(age)*time.Minute); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
	}

	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, auditEventSessionIssued, true, userID, sessionID, "", nil, nil)

	return sessionID, tokenStr, nil
}

// InvalidateSession removes the stored session token. Deleting an already
// absent session succeeds.
//
//	Docs: docs/engine.md
func (e *Engine) InvalidateSession(ctx context.Context, sessionID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrSessionInvalidationFailed)
	}

	if err := e.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInvalidationFailed, err)
	}

	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventSessionInvalidated, true, "", sessionID, "", nil, nil)

	return nil
}

// EncodeRequestToken mints a long-lived request token carrying only a fresh
// request id and the given user id. It is not a session token: it embeds no
// internal secret and no session binding.
//
//	Docs: docs/token.md
func (e *Engine) EncodeRequestToken(userID string) (string, error) {
	if e == nil || e.tokenManager == nil {
		return "", ErrEngineNotReady
	}

	tokenStr, err := e.tokenManager.Encode(token.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(e.config.Token.RequestTokenTTL)),
		},
	})
	if err != nil {
		return "", err
	}

	e.metricInc(MetricRequestTokenIssued)

	return tokenStr, nil
}
