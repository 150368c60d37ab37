package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

func TestSeedOrdersAreConsistent(t *testing.T) {
	ds := Seed()
	require.Len(t, ds.Orders, 5)
	for _, o := range ds.Orders {
		assert.NoError(t, o.Verify())
	}
	assert.True(t, ds.Orders[2].Total.Equal(decimal.RequireFromString("52.50")))
}

func TestAuthenticateByUsernameOrEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	user, err := m.Authenticate(ctx, "booker", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBooker, user.Role)

	user, err = m.Authenticate(ctx, "accountant@qazi.com", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, int64(4), user.ID)

	_, err = m.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Authenticate(ctx, "nobody", DemoPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteCustomerKeepsOrders(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.DeleteCustomer(ctx, 1))
	_, err := m.GetCustomer(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	count := 0
	for _, o := range orders {
		if o.CustomerID == 1 {
			count++
		}
	}
	assert.Equal(t, 2, count)

	assert.ErrorIs(t, m.DeleteCustomer(ctx, 1), ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	order, err := m.UpdateOrderStatus(ctx, 1003, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)

	stored, err := m.GetOrder(ctx, 1003)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, stored.Status)

	_, err = m.UpdateOrderStatus(ctx, 9999, domain.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 5)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	order, err := m.GetOrder(ctx, 1001)
	require.NoError(t, err)
	order.Items[0].Quantity = 1
	order.Status = domain.OrderStatusPending

	again, err := m.GetOrder(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, 70, again.Items[0].Quantity)
	assert.Equal(t, domain.OrderStatusDelivered, again.Status)
}

func TestCreateOrderAssignsIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	order, err := m.CreateOrder(ctx, NewOrderInput{
		CustomerID: 2,
		Date:       "2024-07-06",
		Lines: []domain.LineInput{
			{ProductID: 6, Quantity: 10, Price: decimal.RequireFromString("1.90")},
			{ProductID: 7, Quantity: 5, Price: decimal.RequireFromString("1.90")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1006), order.ID)
	assert.Equal(t, int64(6), order.Items[0].ID)
	assert.Equal(t, int64(7), order.Items[1].ID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("28.5")))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestCreateOrderNeverReusesDeletedIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.DeleteOrder(ctx, 1005))
	order, err := m.CreateOrder(ctx, NewOrderInput{
		CustomerID: 1,
		Date:       "2024-07-07",
		Lines:      []domain.LineInput{{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("1.50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1006), order.ID)
	assert.Equal(t, int64(6), order.Items[0].ID)

	_, err = m.GetOrder(ctx, 1005)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.DeleteOrder(ctx, 1006))
	next, err := m.CreateOrder(ctx, NewOrderInput{
		CustomerID: 1,
		Date:       "2024-07-08",
		Lines:      []domain.LineInput{{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("2.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1007), next.ID)
	assert.Equal(t, int64(7), next.Items[0].ID)
}

func TestGetProductsBatched(t *testing.T) {
	m := NewMemory()
	found, err := m.GetProducts(context.Background(), []int64{1, 3, 42})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "Whole Wheat Bread", found[3].Name)
	assert.NotContains(t, found, int64(42))
}

func TestLatencyHonoursCancellation(t *testing.T) {
	m := NewMemory(WithLatency(time.Minute, time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.ListProducts(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
