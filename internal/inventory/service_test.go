package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
)

func TestSearchIsCaseInsensitive(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default())

	products, err := svc.Search(context.Background(), domain.RoleAdmin, "CHIPS")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Lays Chips", products[0].Name)

	all, err := svc.Search(context.Background(), domain.RoleAdmin, "")
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestListLabelsLowStock(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default())
	rows, err := svc.List(context.Background(), domain.RoleAdmin, "bread")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].LowStock)
	assert.Equal(t, "Low Stock", rows[0].StockStatus)
}

func TestDeleteRejectedBeforeStore(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleBooker, domain.RoleDriver, domain.RoleAccountant} {
		spy := storetest.NewSpy()
		svc := NewService(spy, rbac.Default())
		err := svc.Delete(context.Background(), role, 1, shared.AlwaysConfirm)
		assert.ErrorIs(t, err, rbac.ErrForbidden, role)
		assert.False(t, spy.Called("DeleteProduct"), role)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default())

	var prompt string
	err := svc.Delete(ctx, domain.RoleAdmin, 1, func(_ context.Context, p string) bool {
		prompt = p
		return false
	})
	assert.ErrorIs(t, err, shared.ErrConfirmationDeclined)
	assert.Equal(t, DeletePrompt, prompt)
	assert.False(t, spy.Called("DeleteProduct"))

	require.NoError(t, svc.Delete(ctx, domain.RoleAdmin, 1, shared.AlwaysConfirm))
	_, err = spy.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	orders, err := spy.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orders[0].Items[0].ProductID, "order lines keep the deleted product id")
}

func TestCreateIsGatedStub(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default())
	assert.ErrorIs(t, svc.Create(context.Background(), domain.RoleAdmin), httpx.ErrNotImplemented)
	assert.ErrorIs(t, svc.Create(context.Background(), domain.RoleBooker), rbac.ErrForbidden)
}

func TestExportEmptySelection(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default())
	_, err := svc.Export(context.Background(), domain.RoleAdmin, "caviar")
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Snacks, Mixed", Category: "Snacks, Mixed", Quantity: 150, Price: decimal.RequireFromString("1.50"), Supplier: "PepsiCo", ExpiryDate: "2024-12-31"},
		{ID: 8, Name: `12" Sub Roll`, Category: "Bakery", Quantity: 12, Price: decimal.RequireFromString("2.00"), Supplier: "Local\nBakery", ExpiryDate: "2024-07-15"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, products))

	assert.Contains(t, buf.String(), `1,"Snacks, Mixed","Snacks, Mixed",150,1.5,PepsiCo,2024-12-31`)
	assert.Contains(t, buf.String(), `8,"12"" Sub Roll",Bakery`)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ExportHeader, records[0])
	assert.Equal(t, "Snacks, Mixed", records[1][1])
	assert.Equal(t, "Snacks, Mixed", records[1][2])
	assert.Equal(t, `12" Sub Roll`, records[2][1])
	assert.Equal(t, "Local\nBakery", records[2][5])
	assert.Equal(t, "2", records[2][4])
}
