package middleware

import (
	"context"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/permission"
)

type principalContextKey struct{}
type decisionContextKey struct{}
type identityContextKey struct{}

// PrincipalFromContext returns the authenticated principal stored by
// [CookieAuth].
func PrincipalFromContext(ctx context.Context) (*cookiegate.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*cookiegate.Principal)
	return p, ok
}

// DecisionFromContext returns the permission decision stored by
// [RequirePermission].
func DecisionFromContext(ctx context.Context) (permission.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(permission.Decision)
	return d, ok
}

// IdentityFromContext returns the request identity stored by [Meta] or
// [MetaLite].
func IdentityFromContext(ctx context.Context) (cookiegate.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(cookiegate.Identity)
	return id, ok
}
