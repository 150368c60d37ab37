package reports_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/reports"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
	"github.com/qazi-erp/qazi-erp/internal/testing/sessiontest"
)

type fakeQueue struct {
	dates []string
	err   error
}

func (q *fakeQueue) EnqueueDailySummary(_ context.Context, date string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.dates = append(q.dates, date)
	return "task-1", nil
}

func newRouter(queue reports.Enqueuer) http.Handler {
	policy := rbac.Default()
	h := reports.NewHandler(nil, reports.NewService(storetest.NewSpy(), policy), rbac.Middleware{Policy: policy}, queue)
	r := chi.NewRouter()
	r.Route("/reports", h.MountRoutes)
	return r
}

func TestDailyAndLocations(t *testing.T) {
	h := sessiontest.New(t)
	router := newRouter(nil)
	cookie := h.Login(sessiontest.Users[domain.RoleAccountant])

	res := h.Serve(router, http.MethodGet, "/reports/daily?date=2024-07-02", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"order_count":1`)

	res = h.Serve(router, http.MethodGet, "/reports/daily?date=yesterday", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.Serve(router, http.MethodGet, "/reports/locations", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"username":"izaz"`)

	res = h.Serve(router, http.MethodGet, "/reports/locations", nil, h.Login(sessiontest.Users[domain.RoleBooker]))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRunDailySummary(t *testing.T) {
	h := sessiontest.New(t)
	queue := &fakeQueue{}
	router := newRouter(queue)

	res := h.Serve(router, http.MethodPost, "/reports/daily/run?date=2024-07-05", nil, h.Login(sessiontest.Users[domain.RoleAccountant]))
	assert.Equal(t, http.StatusForbidden, res.Code)

	admin := h.Login(sessiontest.Users[domain.RoleAdmin])
	res = h.Serve(router, http.MethodPost, "/reports/daily/run?date=2024-07-05", nil, admin)
	require.Equal(t, http.StatusAccepted, res.Code)
	assert.Equal(t, []string{"2024-07-05"}, queue.dates)

	queue.err = errors.New("redis: connection refused")
	res = h.Serve(router, http.MethodPost, "/reports/daily/run?date=2024-07-05", nil, admin)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)

	res = h.Serve(newRouter(nil), http.MethodPost, "/reports/daily/run", nil, admin)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}
