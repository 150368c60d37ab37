// Package sessiontest runs handlers behind a Redis-backed session the same
// way the application router does.
package sessiontest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Harness owns a miniredis instance and a session manager.
type Harness struct {
	t        *testing.T
	Redis    *redis.Client
	Sessions *shared.SessionManager
	CSRF     *shared.CSRFManager
}

// New starts miniredis for the duration of t.
func New(t *testing.T) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Harness{
		t:        t,
		Redis:    client,
		Sessions: shared.NewSessionManager(client, "qazi_session", "test-secret", time.Hour, false),
		CSRF:     shared.NewCSRFManager("test-csrf"),
	}
}

// Login persists a session for user and returns its cookie.
func (h *Harness) Login(user domain.User) *http.Cookie {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		h.t.Fatalf("load session: %v", err)
	}
	shared.StorePrincipal(sess, user)
	rec := httptest.NewRecorder()
	if err := h.Sessions.Commit(context.Background(), rec, req, sess); err != nil {
		h.t.Fatalf("commit session: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == h.Sessions.CookieName() {
			return c
		}
	}
	h.t.Fatalf("session cookie not set")
	return nil
}

// Serve runs handler behind the session middleware.
func (h *Harness) Serve(handler http.Handler, method, target string, body io.Reader, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	shared.SessionMiddleware(h.Sessions, nil)(handler).ServeHTTP(rec, req)
	return rec
}

// Session loads the stored session behind cookie.
func (h *Harness) Session(cookie *http.Cookie) *shared.Session {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		h.t.Fatalf("load session: %v", err)
	}
	return sess
}

// Users are the seeded accounts keyed by role.
var Users = map[domain.Role]domain.User{
	domain.RoleAdmin:      {ID: 1, Username: "admin", Email: "admin@qazi.com", Role: domain.RoleAdmin},
	domain.RoleBooker:     {ID: 2, Username: "booker", Email: "booker@qazi.com", Role: domain.RoleBooker},
	domain.RoleDriver:     {ID: 3, Username: "driver", Email: "driver@qazi.com", Role: domain.RoleDriver},
	domain.RoleAccountant: {ID: 4, Username: "accountant", Email: "accountant@qazi.com", Role: domain.RoleAccountant},
}
