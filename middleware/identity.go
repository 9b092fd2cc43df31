package middleware

import (
	"context"
	"net/http"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/internal/extract"
)

var userIDChain = []extract.Ref{
	extract.Cookie("user_id"),
	extract.Cookie("userId"),
	extract.Header("userId"),
	extract.Header("user_id"),
}

var languageChain = []extract.Ref{
	extract.Cookie("language"),
	extract.Header("language"),
}

// Meta returns middleware that resolves the full request identity (user id,
// language, login token, peer IP) and stores it in the request context. It
// enforces nothing; absent values stay empty.
//
//	Docs: docs/middleware.md
func Meta(engine *cookiegate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := cookiegate.Identity{
				UserID:    extract.Resolve(r, userIDChain),
				Language:  extract.Resolve(r, languageChain),
				IPAddress: peerIP(r),
			}
			if engine != nil {
				// Login token comes from the cookie only, never a header.
				identity.LoginToken = extract.Resolve(r, []extract.Ref{
					extract.Cookie(engine.CookieSettings().Name),
				})
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MetaLite returns middleware that resolves only the user id and language.
// It is the lightweight variant for routes that never touch the session.
//
//	Docs: docs/middleware.md
func MetaLite() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := cookiegate.Identity{
				UserID:   extract.Resolve(r, userIDChain),
				Language: extract.Resolve(r, languageChain),
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
