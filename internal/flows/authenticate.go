package flows

import (
	"context"
	"errors"
	"time"

	"github.com/formbridge/cookiegate/token"
)

// AuthFailureKind classifies authentication failures for root-level mapping.
type AuthFailureKind int

const (
	AuthFailureNone AuthFailureKind = iota
	AuthFailureMissingSession
	AuthFailureSessionNotFound
	AuthFailureValidate
	AuthFailureSecretMismatch
	AuthFailureSessionMismatch
	AuthFailureRotate
	AuthFailureStore
)

// AuthResult carries either the authenticated principal plus the freshly
// rotated token, or failure metadata.
type AuthResult struct {
	Failure    AuthFailureKind
	Err        error
	SessionID  string
	UserID     string
	Token      string
	AgeMinutes int
}

// AuthenticateDeps captures session authentication flow dependencies.
type AuthenticateDeps struct {
	LookupToken       func(ctx context.Context, sessionID string) (string, error)
	ValidateToken     func(tokenStr string) (*token.SessionClaims, error)
	SecretMatches     func(embedded string) bool
	MintToken         func(claims token.SessionClaims) (string, error)
	SaveToken         func(ctx context.Context, sessionID, tokenStr string, ttl time.Duration) error
	ClientIP          func(ctx context.Context) string
	DefaultAgeMinutes int
	RedisNil          error
}

// RunAuthenticate executes the per-request session state machine:
// lookup, token validation, integrity checks, and rotation under the same
// session identifier. No state is written on any failure path; the single
// SaveToken at the end is the only side effect.
func RunAuthenticate(ctx context.Context, sessionID string, deps AuthenticateDeps) AuthResult {
	if sessionID == "" {
		return AuthResult{Failure: AuthFailureMissingSession}
	}

	stored, err := deps.LookupToken(ctx, sessionID)
	if err != nil {
		if deps.RedisNil != nil && errors.Is(err, deps.RedisNil) {
			return AuthResult{
				Failure:   AuthFailureSessionNotFound,
				SessionID: sessionID,
			}
		}
		return AuthResult{
			Failure:   AuthFailureStore,
			Err:       err,
			SessionID: sessionID,
		}
	}

	claims, err := deps.ValidateToken(stored)
	if err != nil {
		return AuthResult{
			Failure:   AuthFailureValidate,
			Err:       err,
			SessionID: sessionID,
		}
	}

	if !deps.SecretMatches(claims.Internal) {
		return AuthResult{
			Failure:   AuthFailureSecretMismatch,
			SessionID: sessionID,
		}
	}

	// Cross-session replay guard: the token must be bound to the session
	// identifier it was retrieved under.
	if claims.UID != sessionID {
		return AuthResult{
			Failure:   AuthFailureSessionMismatch,
			SessionID: sessionID,
			UserID:    claims.Principal(),
		}
	}

	userID := claims.Principal()
	age := claims.AgeMinutes
	if age <= 0 {
		age = deps.DefaultAgeMinutes
	}

	minted, err := deps.MintToken(token.SessionClaims{
		UserID:     userID,
		IP:         deps.ClientIP(ctx),
		AgeMinutes: age,
		UID:        sessionID,
	})
	if err != nil {
		return AuthResult{
			Failure:   AuthFailureRotate,
			Err:       err,
			SessionID: sessionID,
			UserID:    userID,
		}
	}

	if err := deps.SaveToken(ctx, sessionID, minted, time.Duration(age)*time.Minute); err != nil {
		return AuthResult{
			Failure:   AuthFailureStore,
			Err:       err,
			SessionID: sessionID,
			UserID:    userID,
		}
	}

	return AuthResult{
		Failure:    AuthFailureNone,
		SessionID:  sessionID,
		UserID:     userID,
		Token:      minted,
		AgeMinutes: age,
	}
}
