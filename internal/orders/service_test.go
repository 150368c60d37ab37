package orders

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
)

func TestChangeStatusPersists(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewService(st, rbac.Default())

	order, err := svc.ChangeStatus(ctx, domain.RoleBooker, 1003, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)

	rows, err := svc.List(ctx, domain.RoleBooker, Criteria{})
	require.NoError(t, err)
	for _, row := range rows {
		if row.ID == 1003 {
			assert.Equal(t, domain.OrderStatusDelivered, row.Status)
		}
	}

	// Paid back to Pending is allowed.
	order, err = svc.ChangeStatus(ctx, domain.RoleAdmin, 1002, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestChangeStatusMissingOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), rbac.Default())

	_, err := svc.ChangeStatus(ctx, domain.RoleAdmin, 9999, domain.OrderStatusPaid)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rows, err := svc.List(ctx, domain.RoleAdmin, Criteria{})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestChangeStatusRejections(t *testing.T) {
	ctx := context.Background()
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default())

	_, err := svc.ChangeStatus(ctx, domain.RoleAdmin, 1003, domain.OrderStatus("Shipped"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	for _, role := range []domain.Role{domain.RoleDriver, domain.RoleAccountant} {
		_, err = svc.ChangeStatus(ctx, role, 1003, domain.OrderStatusPaid)
		assert.ErrorIs(t, err, rbac.ErrForbidden, role)
	}
	assert.False(t, spy.Called("UpdateOrderStatus"))
}

func TestDeleteRejectedBeforeStore(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleBooker, domain.RoleDriver, domain.RoleAccountant} {
		spy := storetest.NewSpy()
		svc := NewService(spy, rbac.Default())
		err := svc.Delete(context.Background(), role, 1001, shared.AlwaysConfirm)
		assert.ErrorIs(t, err, rbac.ErrForbidden, role)
		assert.Empty(t, spy.Calls(), role)
	}
}

func TestDeleteFromInvoicePrompt(t *testing.T) {
	ctx := context.Background()
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default())

	var prompt string
	err := svc.DeleteFromInvoice(ctx, domain.RoleAdmin, 1004, func(_ context.Context, p string) bool {
		prompt = p
		return false
	})
	assert.ErrorIs(t, err, shared.ErrConfirmationDeclined)
	assert.Equal(t, "Are you sure you want to delete Order #1004? This action cannot be undone.", prompt)
	assert.False(t, spy.Called("DeleteOrder"))

	require.NoError(t, svc.Delete(ctx, domain.RoleAdmin, 1004, shared.AlwaysConfirm))
	_, err = spy.GetOrder(ctx, 1004)
	assert.ErrorIs(t, err, store.ErrNotFound)

	customer, err := spy.GetCustomer(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Quick Stop Groceries", customer.Name)
	products, err := spy.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 7)
}

func TestListFiltersAndJoins(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), rbac.Default())

	rows, err := svc.List(ctx, domain.RoleDriver, Criteria{})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, int64(1005), rows[0].ID)
	assert.Equal(t, "City Central Grocers", rows[0].CustomerName)

	rows, err = svc.List(ctx, domain.RoleAdmin, Criteria{Status: domain.OrderStatusPaid, Customer: "corner"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1002), rows[0].ID)

	_, err = svc.List(ctx, domain.RoleAdmin, Criteria{Status: "Lost"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListUnknownCustomer(t *testing.T) {
	rows := JoinCustomers([]domain.Order{{ID: 7, CustomerID: 42, Date: "2024-07-01"}}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, UnknownCustomer, rows[0].CustomerName)
}

func TestCreateSnapshotsPrices(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), rbac.Default())
	svc.now = func() time.Time { return time.Date(2024, 7, 6, 9, 0, 0, 0, time.UTC) }

	order, err := svc.Create(ctx, domain.RoleBooker, CreateRequest{
		CustomerID: 2,
		Items:      []LineRequest{{ProductID: 6, Quantity: 10}, {ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-06", order.Date)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("1.90")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25")))
	assert.NoError(t, order.Verify())
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	ctx := context.Background()
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default())

	_, err := svc.Create(ctx, domain.RoleBooker, CreateRequest{CustomerID: 99, Items: []LineRequest{{ProductID: 1, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = svc.Create(ctx, domain.RoleBooker, CreateRequest{CustomerID: 1, Items: []LineRequest{{ProductID: 42, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = svc.Create(ctx, domain.RoleDriver, CreateRequest{CustomerID: 1, Items: []LineRequest{{ProductID: 1, Quantity: 1}}})
	assert.ErrorIs(t, err, rbac.ErrForbidden)
	assert.False(t, spy.Called("CreateOrder"))
}

func TestInvoiceResolvesReferences(t *testing.T) {
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default())

	inv, err := svc.Invoice(context.Background(), domain.RoleAccountant, 1003)
	require.NoError(t, err)
	assert.Equal(t, "INV-1003", inv.Number)
	assert.Equal(t, PaymentTerms, inv.Terms)
	assert.Equal(t, "Green Valley Supermarket", inv.Customer.Name)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "Whole Wheat Bread", inv.Lines[0].ProductName)
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("52.50")))
	assert.True(t, inv.Tax.IsZero())
	assert.True(t, inv.Consistent)

	var batched int
	for _, c := range spy.Calls() {
		switch c {
		case "GetProducts":
			batched++
		case "GetProduct":
			t.Fatalf("invoice resolved products one by one")
		}
	}
	assert.Equal(t, 1, batched)
}

func TestInvoicePlaceholders(t *testing.T) {
	ds := store.Seed()
	ds.Orders = []domain.Order{{
		ID: 7, CustomerID: 99, Date: "2024-07-08", Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ID: 1, ProductID: 42, Quantity: 2, Price: decimal.RequireFromString("3"), Subtotal: decimal.RequireFromString("7")},
		},
		Total: decimal.RequireFromString("7"),
	}}
	svc := NewService(store.NewMemory(store.WithDataset(ds)), rbac.Default())

	inv, err := svc.Invoice(context.Background(), domain.RoleAdmin, 7)
	require.NoError(t, err)
	assert.Equal(t, "INV-0007", inv.Number)
	assert.Equal(t, UnknownInvoiceCustomer, inv.Customer.Name)
	assert.False(t, inv.Customer.Resolved)
	assert.Equal(t, UnknownInvoiceProduct, inv.Lines[0].ProductName)
	assert.False(t, inv.Lines[0].Consistent)
	assert.False(t, inv.Consistent)

	_, err = svc.Invoice(context.Background(), domain.RoleAdmin, 8)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWriteCSV(t *testing.T) {
	rows := JoinCustomers([]domain.Order{
		{ID: 1001, CustomerID: 1, Date: "2024-07-01", Status: domain.OrderStatusDelivered, Total: decimal.RequireFromString("105"),
			Items: []domain.OrderItem{{Quantity: 70}}},
	}, []domain.Customer{{ID: 1, Name: "Green Valley, Supermarket"}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		ExportHeader,
		{"1001", "Green Valley, Supermarket", "2024-07-01", "Delivered", "70", "105.00"},
	}, records)
}
