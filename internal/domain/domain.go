// Package domain holds the entities shared by every dashboard view.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Role is the access class of an authenticated user.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleBooker     Role = "Booker"
	RoleDriver     Role = "Driver"
	RoleAccountant Role = "Accountant"
)

// Roles lists every known role in declaration order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleBooker, RoleDriver, RoleAccountant}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBooker, RoleDriver, RoleAccountant:
		return true
	}
	return false
}

// ParseRole converts a stored value into a Role. Unknown values stay invalid
// so every policy lookup fails closed on them.
func ParseRole(raw string) Role {
	return Role(strings.TrimSpace(raw))
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusPaid      OrderStatus = "Paid"
)

// OrderStatuses lists the selectable statuses.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusDelivered, OrderStatusPaid}
}

// Valid reports whether s is an enumerated status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusPaid:
		return true
	}
	return false
}

// User is the session principal.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Product is a stocked item.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Supplier   string          `json:"supplier"`
	ExpiryDate string          `json:"expiry_date"`
}

// Customer is a shop on a delivery route.
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Route   string `json:"route"`
}

// BookerLocation is the last reported position of a booker or driver.
type BookerLocation struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
}
