package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	cookiegate "github.com/formbridge/cookiegate"
	"github.com/formbridge/cookiegate/middleware"
)

func newGateEngine(t *testing.T) (*cookiegate.Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := cookiegate.DefaultConfig()
	cfg.Token.Secret = []byte("middleware-test-secret")
	cfg.Token.InternalToken = "middleware-test-internal"
	cfg.Cookie.Secure = false

	engine, err := cookiegate.New().
		WithConfig(cfg).
		WithSessionRedis(rdb).
		Build()
	if err != nil {
		rdb.Close()
		mr.Close()
		t.Fatalf("build engine: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

func seedRecord(t *testing.T, mr *miniredis.Miniredis, userID, entity string, record map[string]bool) {
	t.Helper()
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	mr.HSet(userID, entity, string(data))
}

func okHandler(t *testing.T, onRequest func(r *http.Request)) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCookieAuthRejectsMissingCookie(t *testing.T) {
	engine, _, done := newGateEngine(t)
	defer done()

	h := middleware.CookieAuth(engine)(okHandler(t, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("rejection must not set cookies")
	}
}

func TestCookieAuthRotatesAndMirrors(t *testing.T) {
	engine, _, done := newGateEngine(t)
	defer done()

	sessionID, _, err := engine.IssueSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	var principal *cookiegate.Principal
	h := middleware.CookieAuth(engine)(okHandler(t, func(r *http.Request) {
		principal, _ = middleware.PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: sessionID})
	req.RemoteAddr = "203.0.113.9:51442"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.UserID != "user-1" || principal.SessionID != sessionID {
		t.Fatalf("unexpected principal in context: %+v", principal)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "login-token" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected rotated session cookie")
	}
	if sessionCookie.Value != principal.Token {
		t.Fatal("cookie must carry the rotated token")
	}
	if !sessionCookie.HttpOnly || sessionCookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cookie attributes: %+v", sessionCookie)
	}
	// Max-Age is the fixed lock-out window, not the token age.
	if sessionCookie.MaxAge != int((15 * time.Minute).Seconds()) {
		t.Fatalf("expected lock-out Max-Age, got %d", sessionCookie.MaxAge)
	}

	if got := rec.Header().Get("login-token"); got != principal.Token {
		t.Fatalf("login-token header not mirrored, got %q", got)
	}
	if rec.Header().Get("userId") != "user-1" || rec.Header().Get("user_id") != "user-1" {
		t.Fatal("user id headers not mirrored")
	}
}

func TestCookieAuthHeaderFallback(t *testing.T) {
	engine, _, done := newGateEngine(t)
	defer done()

	sessionID, _, err := engine.IssueSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	h := middleware.CookieAuth(engine)(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("login-token", sessionID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via header fallback, got %d", rec.Code)
	}
}

func TestCookieAuthRotatedCookieIsNotASession(t *testing.T) {
	engine, _, done := newGateEngine(t)
	defer done()

	sessionID, _, err := engine.IssueSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	h := middleware.CookieAuth(engine)(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: sessionID})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rotated string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "login-token" {
			rotated = c.Value
		}
	}
	if rotated == "" {
		t.Fatal("expected rotated cookie on the response")
	}

	// The written-back value is the rotated token, not a session identifier;
	// a client that adopts it is rejected on the next call.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: rotated})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when presenting the rotated token, got %d", rec.Code)
	}

	// Re-presenting the session identifier keeps working.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: sessionID})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 re-presenting the session id, got %d", rec.Code)
	}
}

func TestCookieAuthBackendFaultIsNot401(t *testing.T) {
	engine, mr, done := newGateEngine(t)
	defer done()

	mr.Close()

	h := middleware.CookieAuth(engine)(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: "sess-1"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on backend fault, got %d", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	engine, mr, done := newGateEngine(t)
	defer done()

	seedRecord(t, mr, "user-1", "posts", map[string]bool{"view": true})

	var decision bool
	h := middleware.RequirePermission(engine, "posts", "view", "edit")(okHandler(t, func(r *http.Request) {
		d, ok := middleware.DecisionFromContext(r.Context())
		decision = ok && d.Granted["view"]
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "userId", Value: "user-1"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !decision {
		t.Fatal("expected decision in context with view granted")
	}

	// Existing record with no overlap: 403.
	h = middleware.RequirePermission(engine, "posts", "delete")(okHandler(t, nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// Unknown user: record absent, request passes with an empty decision.
	h = middleware.RequirePermission(engine, "posts", "view")(okHandler(t, nil))
	ghost := httptest.NewRequest(http.MethodGet, "/", nil)
	ghost.AddCookie(&http.Cookie{Name: "userId", Value: "ghost"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, ghost)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected allow-through for missing record, got %d", rec.Code)
	}
}

func TestRequirePermissionUsesAuthenticatedPrincipal(t *testing.T) {
	engine, mr, done := newGateEngine(t)
	defer done()

	// user-1 exists in the record cache with everything revoked.
	seedRecord(t, mr, "user-1", "posts", map[string]bool{
		"view": false, "create": false, "edit": false, "delete": false,
	})
	seedRecord(t, mr, "user-2", "posts", map[string]bool{"view": true})

	sessionID, _, err := engine.IssueSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	chain := middleware.CookieAuth(engine)(
		middleware.RequirePermission(engine, "posts", "view", "create")(okHandler(t, nil)),
	)

	// No userId cookie at all: the gate must use the authenticated user, not
	// fall through to the missing-record tier under an empty id.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: sessionID})

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for revoked authenticated user, got %d", rec.Code)
	}

	// A client-sent userId naming a privileged user must not outrank the
	// authenticated principal.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "login-token", Value: sessionID})
	req.AddCookie(&http.Cookie{Name: "userId", Value: "user-2"})

	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 despite spoofed userId cookie, got %d", rec.Code)
	}
}

func TestRequirePermissionHeaderFallback(t *testing.T) {
	engine, mr, done := newGateEngine(t)
	defer done()

	seedRecord(t, mr, "user-2", "posts", map[string]bool{"view": true})

	h := middleware.RequirePermission(engine, "posts", "view")(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("userId", "user-2")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via header fallback, got %d", rec.Code)
	}
}

func TestMetaIdentityChains(t *testing.T) {
	engine, _, done := newGateEngine(t)
	defer done()

	var identity cookiegate.Identity
	h := middleware.Meta(engine)(okHandler(t, func(r *http.Request) {
		identity, _ = middleware.IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	// user_id cookie outranks everything else in the chain.
	req.AddCookie(&http.Cookie{Name: "user_id", Value: "cookie-user"})
	req.Header.Set("userId", "header-user")
	req.Header.Set("language", "kn")
	req.AddCookie(&http.Cookie{Name: "login-token", Value: "sess-1"})
	req.RemoteAddr = "198.51.100.4:40000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if identity.UserID != "cookie-user" {
		t.Fatalf("expected cookie user_id to win, got %q", identity.UserID)
	}
	if identity.Language != "kn" {
		t.Fatalf("expected header language fallback, got %q", identity.Language)
	}
	if identity.LoginToken != "sess-1" {
		t.Fatalf("expected login token from cookie, got %q", identity.LoginToken)
	}
	if identity.IPAddress != "198.51.100.4" {
		t.Fatalf("expected peer IP, got %q", identity.IPAddress)
	}

	// Header-only user id.
	var headerIdentity cookiegate.Identity
	h = middleware.Meta(engine)(okHandler(t, func(r *http.Request) {
		headerIdentity, _ = middleware.IdentityFromContext(r.Context())
	}))
	headerReq := httptest.NewRequest(http.MethodGet, "/", nil)
	headerReq.Header.Set("user_id", "header-only")
	headerReq.Header.Set("login-token", "not-a-cookie")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, headerReq)
	if headerIdentity.UserID != "header-only" {
		t.Fatalf("expected header user_id fallback, got %q", headerIdentity.UserID)
	}
	if headerIdentity.LoginToken != "" {
		t.Fatal("login token must never resolve from a header")
	}
}

func TestMetaLite(t *testing.T) {
	var identity cookiegate.Identity
	h := middleware.MetaLite()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ = middleware.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "userId", Value: "lite-user"})
	req.AddCookie(&http.Cookie{Name: "language", Value: "en"})
	req.RemoteAddr = "198.51.100.4:40000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if identity.UserID != "lite-user" || identity.Language != "en" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.IPAddress != "" || identity.LoginToken != "" {
		t.Fatal("lite identity must not resolve IP or login token")
	}
}
