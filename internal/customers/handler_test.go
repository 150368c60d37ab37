package customers_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/customers"
	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
	"github.com/qazi-erp/qazi-erp/internal/testing/sessiontest"
)

func newRouter(spy *storetest.Spy) http.Handler {
	policy := rbac.Default()
	h := customers.NewHandler(nil, customers.NewService(spy, policy), rbac.Middleware{Policy: policy}, nil)
	r := chi.NewRouter()
	r.Route("/customers", h.MountRoutes)
	return r
}

func TestListWithRouteFilter(t *testing.T) {
	h := sessiontest.New(t)
	router := newRouter(storetest.NewSpy())
	cookie := h.Login(sessiontest.Users[domain.RoleBooker])

	res := h.Serve(router, http.MethodGet, "/customers/?route=Route+B", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Corner Mart")
	assert.NotContains(t, res.Body.String(), "Green Valley")

	res = h.Serve(router, http.MethodGet, "/customers/routes", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"routes":["All Routes","Route A","Route B","Route C"]}`, res.Body.String())
}

func TestDeleteForbiddenForBooker(t *testing.T) {
	h := sessiontest.New(t)
	spy := storetest.NewSpy()
	router := newRouter(spy)

	res := h.Serve(router, http.MethodDelete, "/customers/1", nil, h.Login(sessiontest.Users[domain.RoleBooker]), "X-Confirm-Delete", "1")
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, spy.Called("DeleteCustomer"))

	res = h.Serve(router, http.MethodDelete, "/customers/1", nil, h.Login(sessiontest.Users[domain.RoleAdmin]), "X-Confirm-Delete", "1")
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, spy.Called("DeleteCustomer"))
}
