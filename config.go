package cookiegate

import (
	"errors"
	"time"
)

// Config defines a public type used by cookiegate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token      TokenConfig
	Session    SessionConfig
	Permission PermissionConfig
	Cookie     CookieConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by cookiegate APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// Secret is the HS256 signing key.
	Secret []byte
	// InternalToken is the process-wide shared secret embedded into every
	// session token and compared in constant time on validation.
	InternalToken string
	Issuer        string
	Leeway        time.Duration
	// RequestTokenTTL bounds tokens minted by EncodeRequestToken.
	RequestTokenTTL time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by cookiegate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
}

/*
====================================
PERMISSION CONFIG
====================================
*/

// PermissionConfig defines a public type used by cookiegate APIs.
//
// PermissionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PermissionConfig struct {
	// HashKeyPrefix namespaces the per-user permission hash keys. Empty means
	// the raw user id is the key.
	HashKeyPrefix string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by cookiegate APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name   string
	Secure bool
	// LockoutDuration is the fixed session lock-out window. It drives the
	// response cookie Max-Age and is the fallback token age when a stored
	// token carries none.
	LockoutDuration time.Duration
}

// AuditConfig defines a public type used by cookiegate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by cookiegate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:          "cookiegate",
			Leeway:          0,
			RequestTokenTTL: 30 * 24 * time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix: "",
		},
		Permission: PermissionConfig{
			HashKeyPrefix: "",
		},
		Cookie: CookieConfig{
			Name:            "login-token",
			Secure:          true,
			LockoutDuration: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.Token.Secret) == 0 {
		return errors.New("Token Secret is required")
	}
	if c.Token.InternalToken == "" {
		return errors.New("Token InternalToken is required")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be within [0, 2m]")
	}
	if c.Token.RequestTokenTTL <= 0 {
		return errors.New("Token RequestTokenTTL must be > 0")
	}

	if c.Cookie.Name == "" {
		return errors.New("Cookie Name is required")
	}
	if c.Cookie.LockoutDuration < time.Minute {
		return errors.New("Cookie LockoutDuration must be >= 1m")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
