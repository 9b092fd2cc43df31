package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/internal/extract"
)

// CookieAuth returns middleware that authenticates the session cookie,
// rotates the session token, and refreshes the response cookie.
//
// The session identifier is read from the session cookie first, then from a
// request header of the same name. Requests without one are rejected before
// any store round-trip. On success the rotated token is written back as a
// Set-Cookie (SameSite=Strict, HttpOnly, Secure per engine config, Max-Age
// fixed to the lock-out duration rather than the per-token age) and mirrored
// in the response headers alongside userId/user_id; the principal is stored
// in the request context.
//
// Clients must keep presenting the session identifier issued at login. The
// written-back cookie carries the rotated token, preserving the original
// wire contract, but a token is not a session identifier and will not
// authenticate a follow-up request; cookie-jar clients that blindly adopt
// Set-Cookie values are logged out after one call.
//
//	Docs: docs/middleware.md
func CookieAuth(engine *cookiegate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			settings := engine.CookieSettings()

			sessionID := extract.Resolve(r, []extract.Ref{
				extract.Cookie(settings.Name),
				extract.Header(settings.Name),
			})
			if sessionID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := cookiegate.WithClientIP(r.Context(), peerIP(r))

			p, err := engine.Authenticate(ctx, sessionID)
			if err != nil {
				if errors.Is(err, cookiegate.ErrUnauthenticated) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			writeSessionCookie(w, settings, p.Token)
			w.Header().Set(settings.Name, p.Token)
			w.Header().Set("userId", p.UserID)
			w.Header().Set("user_id", p.UserID)

			ctx = context.WithValue(ctx, principalContextKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeSessionCookie(w http.ResponseWriter, settings cookiegate.CookieConfig, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     settings.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(settings.LockoutDuration.Seconds()),
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// peerIP reports the transport peer address. Proxy headers are deliberately
// ignored; deployments behind a proxy terminate them upstream.
func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
