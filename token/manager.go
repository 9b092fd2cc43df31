package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned when a token fails signature or structural checks.
var ErrTokenInvalid = errors.New("invalid session token")

// ErrTokenExpired is returned when a structurally valid token is past its expiry.
var ErrTokenExpired = errors.New("session token expired")

// Config defines a public type used by cookiegate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
}

// Manager encodes and validates signed session tokens.
//
//	Docs: docs/token.md
type Manager struct {
	config Config
}

// SessionClaims is the payload carried by a signed session token.
// UserID/LegacyUserID duplicate the principal under both historical claim
// names; Principal resolves the fallback. Internal is the process-wide
// shared secret embedded at issuance, UID the session identifier the token
// is bound to.
type SessionClaims struct {
	RequestID    string `json:"request_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	LegacyUserID string `json:"userId,omitempty"`
	Internal     string `json:"token,omitempty"`
	UID          string `json:"uid,omitempty"`
	AgeMinutes   int    `json:"age,omitempty"`
	IP           string `json:"ip,omitempty"`
	jwt.RegisteredClaims
}

// Principal resolves the user identifier, preferring the user_id claim and
// falling back to the legacy userId alias.
func (c *SessionClaims) Principal() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.LegacyUserID
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// Encode signs the given claims and returns the compact token string.
//
// Missing bookkeeping fields are filled in: RequestID gets a fresh UUID,
// Issuer is taken from the manager config, IssuedAt is stamped with the
// current time, and when ExpiresAt is unset it is derived from AgeMinutes.
//
//	Docs: docs/token.md
func (m *Manager) Encode(claims SessionClaims) (string, error) {
	now := time.Now()

	if claims.RequestID == "" {
		claims.RequestID = uuid.NewString()
	}
	if claims.Issuer == "" {
		claims.Issuer = m.config.Issuer
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		if claims.AgeMinutes <= 0 {
			return "", errors.New("claims carry neither expiry nor age")
		}
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(claims.AgeMinutes) * time.Minute))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Validate verifies the signature and expiry of tokenStr and returns the
// decoded claims. Signature, structural, and algorithm failures map to
// [ErrTokenInvalid]; an expired but otherwise valid token maps to
// [ErrTokenExpired]. The underlying parser detail is attached to the
// returned error.
//
//	Docs: docs/token.md
func (m *Manager) Validate(tokenStr string) (*SessionClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
