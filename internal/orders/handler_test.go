package orders_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/orders"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
	"github.com/qazi-erp/qazi-erp/internal/testing/sessiontest"
	"github.com/qazi-erp/qazi-erp/internal/view"
)

type fakePDF struct {
	html string
}

func (f *fakePDF) RenderHTML(_ context.Context, html []byte) ([]byte, error) {
	f.html = string(html)
	return []byte("%PDF-fake"), nil
}

func newRouter(t *testing.T, spy *storetest.Spy, pdf orders.PDFRenderer) http.Handler {
	t.Helper()
	pages, err := view.NewEngine()
	require.NoError(t, err)
	policy := rbac.Default()
	h := orders.NewHandler(nil, orders.NewService(spy, policy), rbac.Middleware{Policy: policy}, observability.NewMetrics(), pages, pdf, "$")
	r := chi.NewRouter()
	r.Route("/orders", h.MountRoutes)
	return r
}

func TestStatusChangeByRole(t *testing.T) {
	h := sessiontest.New(t)
	spy := storetest.NewSpy()
	router := newRouter(t, spy, nil)

	body := `{"status":"Delivered"}`
	res := h.Serve(router, http.MethodPost, "/orders/1003/status", strings.NewReader(body), h.Login(sessiontest.Users[domain.RoleDriver]))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, spy.Called("UpdateOrderStatus"))

	res = h.Serve(router, http.MethodPost, "/orders/1003/status", strings.NewReader(body), h.Login(sessiontest.Users[domain.RoleBooker]))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"status":"Delivered"`)

	res = h.Serve(router, http.MethodPost, "/orders/9999/status", strings.NewReader(body), h.Login(sessiontest.Users[domain.RoleAdmin]))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = h.Serve(router, http.MethodPost, "/orders/1003/status", strings.NewReader(`{"status":"Shipped"}`), h.Login(sessiontest.Users[domain.RoleAdmin]))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestDeleteOrderRequiresAdminAndConfirmation(t *testing.T) {
	h := sessiontest.New(t)
	spy := storetest.NewSpy()
	router := newRouter(t, spy, nil)

	res := h.Serve(router, http.MethodDelete, "/orders/1001", nil, h.Login(sessiontest.Users[domain.RoleBooker]), "X-Confirm-Delete", "1001")
	assert.Equal(t, http.StatusForbidden, res.Code)

	admin := h.Login(sessiontest.Users[domain.RoleAdmin])
	res = h.Serve(router, http.MethodDelete, "/orders/1001?from=invoice", nil, admin)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Order #1001")
	assert.False(t, spy.Called("DeleteOrder"))

	res = h.Serve(router, http.MethodDelete, "/orders/1001", nil, admin, "X-Confirm-Delete", "1001")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"deleted":true`)

	res = h.Serve(router, http.MethodGet, "/orders/", nil, admin)
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, res.Body.String(), `"id":1001`)
}

func TestCreateOrder(t *testing.T) {
	h := sessiontest.New(t)
	router := newRouter(t, storetest.NewSpy(), nil)
	body := `{"customer_id":3,"date":"2024-07-09","items":[{"product_id":2,"quantity":12}]}`

	res := h.Serve(router, http.MethodPost, "/orders/", strings.NewReader(body), h.Login(sessiontest.Users[domain.RoleAccountant]))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = h.Serve(router, http.MethodPost, "/orders/", strings.NewReader(body), h.Login(sessiontest.Users[domain.RoleBooker]))
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), `"id":1006`)
	assert.Contains(t, res.Body.String(), `"total":"24"`)

	res = h.Serve(router, http.MethodPost, "/orders/", strings.NewReader(`{"customer_id":3,"items":[]}`), h.Login(sessiontest.Users[domain.RoleBooker]))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestInvoiceFormats(t *testing.T) {
	h := sessiontest.New(t)
	pdf := &fakePDF{}
	router := newRouter(t, storetest.NewSpy(), pdf)
	cookie := h.Login(sessiontest.Users[domain.RoleDriver])

	res := h.Serve(router, http.MethodGet, "/orders/1003/invoice", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"number":"INV-1003"`)

	res = h.Serve(router, http.MethodGet, "/orders/1003/invoice.html", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, res.Body.String(), "$52.50")
	assert.Contains(t, res.Body.String(), "Whole Wheat Bread")

	res = h.Serve(router, http.MethodGet, "/orders/1003/invoice.pdf", nil, cookie)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-fake", res.Body.String())
	assert.Contains(t, pdf.html, "INV-1003")

	res = h.Serve(router, http.MethodGet, "/orders/4242/invoice", nil, cookie)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestExportOrders(t *testing.T) {
	h := sessiontest.New(t)
	router := newRouter(t, storetest.NewSpy(), nil)

	res := h.Serve(router, http.MethodGet, "/orders/export.csv?status=Paid", nil, h.Login(sessiontest.Users[domain.RoleAccountant]))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, `attachment; filename="qazi-orders-export.csv"`, res.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(res.Body.String()), "\n")
	assert.Equal(t, []string{
		"ID,Customer,Date,Status,Items,Total",
		"1005,City Central Grocers,2024-07-05,Paid,40,200.00",
		"1002,Corner Mart,2024-07-02,Paid,50,100.00",
	}, lines)
}
