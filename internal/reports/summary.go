package reports

import (
	"cmp"
	"slices"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

// UnknownProduct names sales lines whose product was deleted.
const UnknownProduct = "Unknown product"

// TopProductLimit caps the ranked product list.
const TopProductLimit = 5

var calendar = &now.Config{WeekStartDay: time.Monday}

// ProductSales is the volume of one product on the reported day.
type ProductSales struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DailySummary aggregates the orders placed on one calendar day.
type DailySummary struct {
	Date        string                     `json:"date"`
	OrderCount  int                        `json:"order_count"`
	Revenue     decimal.Decimal            `json:"revenue"`
	Collected   decimal.Decimal            `json:"collected"`
	Counts      map[domain.OrderStatus]int `json:"counts"`
	UnitsSold   int                        `json:"units_sold"`
	WeekToDate  decimal.Decimal            `json:"week_to_date"`
	MonthToDate decimal.Decimal            `json:"month_to_date"`
	TopProducts []ProductSales             `json:"top_products"`
}

// Summarize builds the summary for day from every order. Orders with an
// unparsable date are ignored. names resolves product ids.
func Summarize(day time.Time, orders []domain.Order, names map[int64]string) DailySummary {
	cal := calendar.With(day)
	dayStart, dayEnd := cal.BeginningOfDay(), cal.EndOfDay()
	weekStart, monthStart := cal.BeginningOfWeek(), cal.BeginningOfMonth()

	sum := DailySummary{
		Date:        dayStart.Format(time.DateOnly),
		Revenue:     decimal.Zero,
		Collected:   decimal.Zero,
		Counts:      make(map[domain.OrderStatus]int, len(domain.OrderStatuses())),
		WeekToDate:  decimal.Zero,
		MonthToDate: decimal.Zero,
		TopProducts: make([]ProductSales, 0),
	}
	for _, status := range domain.OrderStatuses() {
		sum.Counts[status] = 0
	}

	sales := make(map[int64]*ProductSales)
	for _, o := range orders {
		placed, err := time.ParseInLocation(time.DateOnly, o.Date, day.Location())
		if err != nil || placed.After(dayEnd) {
			continue
		}
		if !placed.Before(weekStart) {
			sum.WeekToDate = sum.WeekToDate.Add(o.Total)
		}
		if !placed.Before(monthStart) {
			sum.MonthToDate = sum.MonthToDate.Add(o.Total)
		}
		if placed.Before(dayStart) {
			continue
		}

		sum.OrderCount++
		sum.Revenue = sum.Revenue.Add(o.Total)
		sum.Counts[o.Status]++
		if o.Status == domain.OrderStatusPaid {
			sum.Collected = sum.Collected.Add(o.Total)
		}
		for _, item := range o.Items {
			sum.UnitsSold += item.Quantity
			ps, ok := sales[item.ProductID]
			if !ok {
				name, found := names[item.ProductID]
				if !found {
					name = UnknownProduct
				}
				ps = &ProductSales{ProductID: item.ProductID, Name: name, Revenue: decimal.Zero}
				sales[item.ProductID] = ps
			}
			ps.Units += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Subtotal)
		}
	}

	for _, ps := range sales {
		sum.TopProducts = append(sum.TopProducts, *ps)
	}
	slices.SortFunc(sum.TopProducts, func(a, b ProductSales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(sum.TopProducts) > TopProductLimit {
		sum.TopProducts = sum.TopProducts[:TopProductLimit]
	}
	return sum
}
