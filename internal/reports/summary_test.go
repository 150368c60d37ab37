package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	require.NoError(t, err)
	return d.Add(15 * time.Hour)
}

func TestDailySummaryForSeedDay(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default())

	// 2024-07-04 is a Thursday; the week starts Monday 2024-07-01.
	sum, err := svc.Daily(context.Background(), domain.RoleAccountant, day(t, "2024-07-04"))
	require.NoError(t, err)
	assert.Equal(t, "2024-07-04", sum.Date)
	assert.Equal(t, 1, sum.OrderCount)
	assert.Equal(t, 30, sum.UnitsSold)
	assert.True(t, sum.Revenue.Equal(decimal.RequireFromString("127.5")))
	assert.True(t, sum.Collected.IsZero())
	assert.Equal(t, 1, sum.Counts[domain.OrderStatusDelivered])
	assert.True(t, sum.WeekToDate.Equal(decimal.RequireFromString("385")), sum.WeekToDate.String())
	assert.True(t, sum.MonthToDate.Equal(sum.WeekToDate))
	require.Len(t, sum.TopProducts, 1)
	assert.Equal(t, "Milk 1 Gallon", sum.TopProducts[0].Name)
}

func TestSummarizeRanksProductsAndSkipsBadDates(t *testing.T) {
	price := decimal.RequireFromString
	orders := []domain.Order{
		domain.NewOrder(1, 1, "2024-07-10", 1, []domain.LineInput{
			{ProductID: 1, Quantity: 10, Price: price("1.5")},
			{ProductID: 9, Quantity: 1, Price: price("40")},
		}),
		domain.NewOrder(2, 1, "2024-07-10", 3, []domain.LineInput{{ProductID: 1, Quantity: 20, Price: price("1.5")}}),
		domain.NewOrder(3, 1, "10/07/2024", 4, []domain.LineInput{{ProductID: 1, Quantity: 99, Price: price("1")}}),
		domain.NewOrder(4, 1, "2024-07-11", 5, []domain.LineInput{{ProductID: 1, Quantity: 99, Price: price("1")}}),
	}
	orders[1].Status = domain.OrderStatusPaid

	sum := Summarize(day(t, "2024-07-10"), orders, map[int64]string{1: "Lays Chips"})
	assert.Equal(t, 2, sum.OrderCount)
	assert.Equal(t, 31, sum.UnitsSold)
	assert.True(t, sum.Collected.Equal(price("30")))
	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "Lays Chips", sum.TopProducts[0].Name)
	assert.True(t, sum.TopProducts[0].Revenue.Equal(price("45")))
	assert.Equal(t, UnknownProduct, sum.TopProducts[1].Name)
}

func TestDailySummaryForbidden(t *testing.T) {
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default())
	_, err := svc.Daily(context.Background(), domain.RoleBooker, time.Now())
	assert.ErrorIs(t, err, rbac.ErrForbidden)
	_, err = svc.Locations(context.Background(), domain.RoleDriver)
	assert.ErrorIs(t, err, rbac.ErrForbidden)
	assert.Empty(t, spy.Calls())
}

func TestParseDay(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default())
	fixed := time.Date(2024, 7, 9, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	d, err := svc.ParseDay("")
	require.NoError(t, err)
	assert.Equal(t, fixed, d)

	_, err = svc.ParseDay("07/09/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
