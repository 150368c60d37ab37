package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInconsistentOrder reports a cached subtotal or total that disagrees with its lines.
var ErrInconsistentOrder = errors.New("domain: order totals inconsistent")

// OrderItem is one line of an order. Price is the unit price captured when the
// order was placed, not the product's current price.
type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ExpectedSubtotal is quantity times unit price.
func (i OrderItem) ExpectedSubtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Consistent reports whether the stored subtotal matches quantity x price.
func (i OrderItem) Consistent() bool {
	return i.Subtotal.Equal(i.ExpectedSubtotal())
}

// Order is a customer purchase. Total is cached and always derived from Items.
type Order struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	Date       string          `json:"date"`
	Total      decimal.Decimal `json:"total"`
	Items      []OrderItem     `json:"items"`
	Status     OrderStatus     `json:"status"`
}

// LineInput describes a line before subtotals are derived.
type LineInput struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// NewOrder assembles a Pending order, numbering items from firstItemID and
// deriving every subtotal and the total.
func NewOrder(id, customerID int64, date string, firstItemID int64, lines []LineInput) Order {
	items := make([]OrderItem, 0, len(lines))
	for i, line := range lines {
		item := OrderItem{
			ID:        firstItemID + int64(i),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
		item.Subtotal = item.ExpectedSubtotal()
		items = append(items, item)
	}
	order := Order{
		ID:         id,
		CustomerID: customerID,
		Date:       date,
		Items:      items,
		Status:     OrderStatusPending,
	}
	order.Total = SumSubtotals(items)
	return order
}

// SumSubtotals adds the stored subtotals of items.
func SumSubtotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Verify checks every line subtotal and the cached total.
func (o Order) Verify() error {
	for _, item := range o.Items {
		if !item.Consistent() {
			return fmt.Errorf("%w: order %d item %d subtotal %s, expected %s",
				ErrInconsistentOrder, o.ID, item.ID, item.Subtotal, item.ExpectedSubtotal())
		}
	}
	if sum := SumSubtotals(o.Items); !o.Total.Equal(sum) {
		return fmt.Errorf("%w: order %d total %s, expected %s", ErrInconsistentOrder, o.ID, o.Total, sum)
	}
	return nil
}

// Units returns the number of units across all lines.
func (o Order) Units() int {
	units := 0
	for _, item := range o.Items {
		units += item.Quantity
	}
	return units
}

// ProductIDs returns the distinct product ids referenced by the order, in line order.
func (o Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Clone returns a deep copy so callers never share the item slice.
func (o Order) Clone() Order {
	cp := o
	if o.Items != nil {
		cp.Items = make([]OrderItem, len(o.Items))
		copy(cp.Items, o.Items)
	}
	return cp
}
