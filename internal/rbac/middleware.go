package rbac

import (
	"log/slog"
	"net/http"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/shared"
)

// Middleware wires policy checks in front of HTTP handlers.
type Middleware struct {
	Policy *Policy
	Logger *slog.Logger
}

// RequireUser rejects requests without an authenticated session.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.UserFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireView ensures the current role may open view.
func (m Middleware) RequireView(view View) func(http.Handler) http.Handler {
	return m.guard(func(role domain.Role) bool {
		return m.Policy.Allows(role, view)
	}, slog.String("view", string(view)))
}

// RequireCapability ensures the current role holds capability inside view.
func (m Middleware) RequireCapability(view View, capability Capability) func(http.Handler) http.Handler {
	return m.guard(func(role domain.Role) bool {
		return m.Policy.Can(role, view, capability)
	}, slog.String("view", string(view)), slog.String("capability", string(capability)))
}

func (m Middleware) guard(allowed func(domain.Role) bool, attrs ...any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.UserFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			if !allowed(user.Role) {
				if m.Logger != nil {
					m.Logger.Warn("rbac denied", append(attrs, slog.String("role", string(user.Role)), slog.String("path", r.URL.Path))...)
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "not permitted for role "+string(user.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
