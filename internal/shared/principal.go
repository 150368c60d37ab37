package shared

import (
	"strconv"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

// Session keys for the authenticated principal and shell state.
const (
	SessionKeyUsername   = "username"
	SessionKeyEmail      = "email"
	SessionKeyRole       = "role"
	SessionKeyActiveView = "active_view"
)

// StorePrincipal binds user to the session.
func StorePrincipal(sess *Session, user domain.User) {
	if sess == nil {
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	sess.Set(SessionKeyUsername, user.Username)
	sess.Set(SessionKeyEmail, user.Email)
	sess.Set(SessionKeyRole, string(user.Role))
}

// PrincipalFromSession returns the user bound to the session, if any.
// The role is parsed as stored; an unknown value stays invalid.
func PrincipalFromSession(sess *Session) (domain.User, bool) {
	if sess == nil || sess.User() == "" {
		return domain.User{}, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return domain.User{}, false
	}
	return domain.User{
		ID:       id,
		Username: sess.Get(SessionKeyUsername),
		Email:    sess.Get(SessionKeyEmail),
		Role:     domain.ParseRole(sess.Get(SessionKeyRole)),
	}, true
}
