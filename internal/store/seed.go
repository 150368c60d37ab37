package store

import (
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

// Dataset is a complete set of records for a fresh store.
type Dataset struct {
	Users     []UserRecord
	Products  []domain.Product
	Customers []domain.Customer
	Orders    []domain.Order
	Locations []domain.BookerLocation
}

var (
	demoHashOnce sync.Once
	demoHash     string
)

func demoPasswordHash() string {
	demoHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		demoHash = string(hash)
	})
	return demoHash
}

// Seed returns the demo data set. Each call returns fresh slices.
func Seed() Dataset {
	hash := demoPasswordHash()
	user := func(id int64, name string, role domain.Role) UserRecord {
		return UserRecord{
			User:         domain.User{ID: id, Username: name, Email: name + "@qazi.com", Role: role},
			PasswordHash: hash,
		}
	}
	price := decimal.RequireFromString
	order := func(id, customerID int64, date string, item domain.OrderItem, status domain.OrderStatus) domain.Order {
		item.Subtotal = item.ExpectedSubtotal()
		return domain.Order{
			ID:         id,
			CustomerID: customerID,
			Date:       date,
			Total:      item.Subtotal,
			Items:      []domain.OrderItem{item},
			Status:     status,
		}
	}

	return Dataset{
		Users: []UserRecord{
			user(1, "admin", domain.RoleAdmin),
			user(2, "booker", domain.RoleBooker),
			user(3, "driver", domain.RoleDriver),
			user(4, "accountant", domain.RoleAccountant),
			user(5, "izaz", domain.RoleBooker),
			user(6, "saqib", domain.RoleBooker),
		},
		Products: []domain.Product{
			{ID: 1, Name: "Lays Chips", Category: "Snacks", Quantity: 150, Price: price("1.50"), Supplier: "PepsiCo", ExpiryDate: "2024-12-31"},
			{ID: 2, Name: "Coca-Cola 1.5L", Category: "Beverages", Quantity: 200, Price: price("2.00"), Supplier: "Coca-Cola Inc.", ExpiryDate: "2025-06-30"},
			{ID: 3, Name: "Whole Wheat Bread", Category: "Bakery", Quantity: 45, Price: price("3.50"), Supplier: "Local Bakery", ExpiryDate: "2024-07-15"},
			{ID: 4, Name: "Milk 1 Gallon", Category: "Dairy", Quantity: 80, Price: price("4.25"), Supplier: "Dairy Farm", ExpiryDate: "2024-07-20"},
			{ID: 5, Name: "Cheddar Cheese", Category: "Dairy", Quantity: 120, Price: price("5.00"), Supplier: "Cheese Co.", ExpiryDate: "2024-10-01"},
			{ID: 6, Name: "Pepsi 1.5L", Category: "Beverages", Quantity: 30, Price: price("1.90"), Supplier: "PepsiCo", ExpiryDate: "2025-06-30"},
			{ID: 7, Name: "7-Up 1.5L", Category: "Beverages", Quantity: 180, Price: price("1.90"), Supplier: "PepsiCo", ExpiryDate: "2025-06-30"},
		},
		Customers: []domain.Customer{
			{ID: 1, Name: "Green Valley Supermarket", Phone: "555-0101", Address: "123 Main St, Cityville", Route: "Route A"},
			{ID: 2, Name: "Corner Mart", Phone: "555-0102", Address: "456 Oak Ave, Townsville", Route: "Route B"},
			{ID: 3, Name: "Quick Stop Groceries", Phone: "555-0103", Address: "789 Pine Ln, Villageton", Route: "Route A"},
			{ID: 4, Name: "City Central Grocers", Phone: "555-0104", Address: "101 Center Plaza, Cityville", Route: "Route C"},
		},
		Orders: []domain.Order{
			order(1001, 1, "2024-07-01", domain.OrderItem{ID: 1, ProductID: 1, Quantity: 70, Price: price("1.50")}, domain.OrderStatusDelivered),
			order(1002, 2, "2024-07-02", domain.OrderItem{ID: 2, ProductID: 2, Quantity: 50, Price: price("2.00")}, domain.OrderStatusPaid),
			order(1003, 1, "2024-07-03", domain.OrderItem{ID: 3, ProductID: 3, Quantity: 15, Price: price("3.50")}, domain.OrderStatusPending),
			order(1004, 3, "2024-07-04", domain.OrderItem{ID: 4, ProductID: 4, Quantity: 30, Price: price("4.25")}, domain.OrderStatusDelivered),
			order(1005, 4, "2024-07-05", domain.OrderItem{ID: 5, ProductID: 5, Quantity: 40, Price: price("5.00")}, domain.OrderStatusPaid),
		},
		Locations: []domain.BookerLocation{
			{ID: 2, Username: "booker", Latitude: 34.0151, Longitude: 71.5249, Status: "On Route"},
			{ID: 5, Username: "izaz", Latitude: 34.025, Longitude: 71.58, Status: "Meeting"},
			{ID: 6, Username: "saqib", Latitude: 33.99, Longitude: 71.48, Status: "Idle"},
		},
	}
}
