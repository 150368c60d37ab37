package auth_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/qazi-erp/qazi-erp/internal/auth"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
	"github.com/qazi-erp/qazi-erp/internal/testing/sessiontest"
	_ "github.com/qazi-erp/qazi-erp/testing"
)

func newAuthRouter(t *testing.T) (http.Handler, *sessiontest.Harness) {
	t.Helper()
	h := sessiontest.New(t)
	policy := rbac.Default()
	handler := auth.NewHandler(nil, auth.NewService(store.NewMemory(), policy), policy, h.Sessions, h.CSRF)
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, h
}

func TestLoginLandsOnRoleDefault(t *testing.T) {
	router, h := newAuthRouter(t)

	cases := map[string]string{
		"admin":               "Dashboard",
		"booker@qazi.com":     "Dashboard",
		"driver":              "Orders",
		"accountant@qazi.com": "Payments",
	}
	for identifier, landing := range cases {
		body := `{"identifier":"` + identifier + `","password":"password"}`
		res := h.Serve(router, http.MethodPost, "/auth/login", strings.NewReader(body), nil)
		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", identifier, res.Code, res.Body.String())
		}
		var payload struct {
			ActiveView string   `json:"active_view"`
			Navigation []string `json:"navigation"`
			CSRFToken  string   `json:"csrf_token"`
		}
		if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.ActiveView != landing {
			t.Fatalf("%s: expected landing %s, got %s", identifier, landing, payload.ActiveView)
		}
		if payload.CSRFToken == "" || len(payload.Navigation) == 0 {
			t.Fatalf("%s: incomplete login payload %+v", identifier, payload)
		}

		var cookie *http.Cookie
		for _, c := range res.Result().Cookies() {
			if c.Name == h.Sessions.CookieName() {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatalf("%s: session cookie missing", identifier)
		}
		sess := h.Session(cookie)
		if sess.Get(shared.SessionKeyActiveView) != landing {
			t.Fatalf("%s: session active view %q", identifier, sess.Get(shared.SessionKeyActiveView))
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, h := newAuthRouter(t)

	res := h.Serve(router, http.MethodPost, "/auth/login", strings.NewReader(`{"identifier":"admin","password":"wrongpass"}`), nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid username/email or password.") {
		t.Fatalf("expected error message in response, got %s", res.Body.String())
	}
}

func TestLoginValidation(t *testing.T) {
	router, h := newAuthRouter(t)

	res := h.Serve(router, http.MethodPost, "/auth/login", strings.NewReader(`{"identifier":"","password":""}`), nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	router, h := newAuthRouter(t)
	cookie := h.Login(sessiontest.Users["Admin"])

	res := h.Serve(router, http.MethodPost, "/auth/logout", nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if _, ok := shared.PrincipalFromSession(h.Session(cookie)); ok {
		t.Fatalf("expected session to be cleared after logout")
	}
}
