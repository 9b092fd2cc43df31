package cookiegate

import (
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/formbridge/cookiegate/internal/audit"
	"github.com/formbridge/cookiegate/permission"
	"github.com/formbridge/cookiegate/session"
	"github.com/formbridge/cookiegate/token"
)

// Builder defines a public type used by cookiegate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	sessionRedis    redis.UniversalClient
	permissionRedis redis.UniversalClient

	auditSink AuditSink
	warnf     func(string, ...any)

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSessionRedis describes the withsessionredis operation and its observable behavior.
//
// WithSessionRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionRedis(client redis.UniversalClient) *Builder {
	b.sessionRedis = client
	return b
}

// WithPermissionRedis describes the withpermissionredis operation and its observable behavior.
//
// WithPermissionRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPermissionRedis(client redis.UniversalClient) *Builder {
	b.permissionRedis = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithWarnFunc describes the withwarnfunc operation and its observable behavior.
//
// WithWarnFunc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithWarnFunc(warnf func(string, ...any)) *Builder {
	b.warnf = warnf
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.sessionRedis == nil {
		return nil, errors.New("session redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Single-instance deployments point both stores at the same client.
	permissionRedis := b.permissionRedis
	if permissionRedis == nil {
		permissionRedis = b.sessionRedis
	}

	tm, err := token.NewManager(token.Config{
		Secret: cloneBytes(cfg.Token.Secret),
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:          cfg,
		tokenManager:    tm,
		sessionStore:    session.NewStore(b.sessionRedis, cfg.Session.RedisPrefix),
		permissionStore: permission.NewStore(permissionRedis, cfg.Permission.HashKeyPrefix),
		metrics:         NewMetrics(cfg.Metrics),
	}

	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine.warnf = b.warnf
	if engine.warnf == nil {
		engine.warnf = log.Printf
	}

	b.built = true

	return engine, nil
}
