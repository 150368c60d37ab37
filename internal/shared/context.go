package shared

import (
	"context"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// UserFromContext returns the principal of the request session.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	return PrincipalFromSession(SessionFromContext(ctx))
}
