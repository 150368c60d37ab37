package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "qazi_session", "secret", time.Hour, false), mr
}

func commit(t *testing.T, sm *SessionManager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestPrincipalRoundTripThroughRedis(t *testing.T) {
	sm, _ := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	StorePrincipal(sess, domain.User{ID: 3, Username: "driver", Email: "driver@qazi.com", Role: domain.RoleDriver})
	sess.Set(SessionKeyActiveView, "Orders")
	cookie := commit(t, sm, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	user, ok := PrincipalFromSession(loaded)
	require.True(t, ok)
	assert.Equal(t, domain.RoleDriver, user.Role)
	assert.Equal(t, "driver@qazi.com", user.Email)
	assert.Equal(t, "Orders", loaded.Get(SessionKeyActiveView))
}

func TestRenewDropsPreviousID(t *testing.T) {
	sm, mr := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	first := commit(t, sm, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(first)
	loaded, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sm.Renew(loaded)
	second := commit(t, sm, loaded)

	assert.NotEqual(t, first.Value, second.Value)
	assert.False(t, mr.Exists("session:"+first.Value))
	assert.True(t, mr.Exists("session:"+second.Value))
}

func TestDestroyExpiresCookie(t *testing.T) {
	sm, mr := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	StorePrincipal(sess, domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin})
	cookie := commit(t, sm, sess)

	sm.Destroy(sess)
	cleared := commit(t, sm, sess)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.False(t, mr.Exists("session:"+cookie.Value))
}

func TestPrincipalMissing(t *testing.T) {
	_, ok := PrincipalFromSession(nil)
	assert.False(t, ok)

	sm, _ := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, ok = PrincipalFromSession(sess)
	assert.False(t, ok)
}
