// Package dashboard derives the summary figures shown after login.
package dashboard

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

// RecentOrderLimit caps the recent orders list.
const RecentOrderLimit = 5

// UnknownCustomer labels an order whose customer no longer resolves.
const UnknownCustomer = "Unknown"

// RecentOrder is a row of the recent orders card.
type RecentOrder struct {
	ID           int64              `json:"id"`
	CustomerName string             `json:"customer_name"`
	Date         string             `json:"date"`
	Total        decimal.Decimal    `json:"total"`
	Status       domain.OrderStatus `json:"status"`
}

// Metrics are recomputed from the current lists on every request.
type Metrics struct {
	TotalOrders       int           `json:"total_orders"`
	TotalCustomers    int           `json:"total_customers"`
	PendingOrderCount int           `json:"pending_order_count"`
	LowStockCount     int           `json:"low_stock_count"`
	RecentOrders      []RecentOrder `json:"recent_orders"`
}

// Compute derives Metrics. Recent orders are newest first by date, then by
// id, so the result does not depend on list order.
func Compute(products []domain.Product, orders []domain.Order, customers []domain.Customer) Metrics {
	m := Metrics{
		TotalOrders:    len(orders),
		TotalCustomers: len(customers),
		RecentOrders:   []RecentOrder{},
	}
	for _, p := range products {
		if p.IsLowStock() {
			m.LowStockCount++
		}
	}
	for _, o := range orders {
		if o.Status == domain.OrderStatusPending {
			m.PendingOrderCount++
		}
	}

	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	sorted := slices.Clone(orders)
	slices.SortFunc(sorted, func(a, b domain.Order) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	for _, o := range sorted[:min(len(sorted), RecentOrderLimit)] {
		name, ok := names[o.CustomerID]
		if !ok {
			name = UnknownCustomer
		}
		m.RecentOrders = append(m.RecentOrders, RecentOrder{
			ID:           o.ID,
			CustomerName: name,
			Date:         o.Date,
			Total:        o.Total,
			Status:       o.Status,
		})
	}
	return m
}
