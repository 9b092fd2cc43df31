package middleware

import (
	"context"
	"errors"
	"net/http"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/internal/extract"
)

// RequirePermission returns middleware that gates the wrapped handler on the
// caller holding at least one of ops for entity.
//
// When [CookieAuth] runs earlier in the chain, the authenticated principal in
// the request context is the user id; the gate never trusts a client-sent id
// over an authenticated one. Without a principal the id is resolved from the
// userId cookie then the userId header, the chain the permission gate has
// always used; it is narrower than the [Meta] identity chain on purpose. A
// caller with no permission record at all passes through with an empty
// decision — the record cache is advisory and enforcement of unlisted users
// belongs to the application.
//
//	Docs: docs/middleware.md
func RequirePermission(engine *cookiegate.Engine, entity string, ops ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			userID := ""
			if p, ok := PrincipalFromContext(r.Context()); ok {
				userID = p.UserID
			}
			if userID == "" {
				userID = extract.Resolve(r, []extract.Ref{
					extract.Cookie("userId"),
					extract.Header("userId"),
				})
			}

			decision, err := engine.CheckPermission(r.Context(), userID, entity, ops)
			if err != nil {
				if errors.Is(err, cookiegate.ErrInsufficientPermission) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), decisionContextKey{}, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
