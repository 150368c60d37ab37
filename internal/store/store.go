// Package store is the data access layer behind every dashboard view.
package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
)

var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = fmt.Errorf("store: %w", httpx.ErrNotFound)
	// ErrInvalidCredentials is returned when no user matches the login.
	ErrInvalidCredentials = errors.New("store: invalid credentials")
)

// NewOrderInput describes an order before ids are assigned.
type NewOrderInput struct {
	CustomerID int64
	Date       string
	Lines      []domain.LineInput
}

// Store is implemented by the in-memory mock and by PostgreSQL.
type Store interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	// GetProducts resolves many ids in one call. Unknown ids are absent from the map.
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	CreateOrder(ctx context.Context, in NewOrderInput) (domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error)

	// Authenticate matches identifier against username or email.
	Authenticate(ctx context.Context, identifier, secret string) (domain.User, error)

	ListBookerLocations(ctx context.Context) ([]domain.BookerLocation, error)
}

// UserRecord is a user with its stored password hash.
type UserRecord struct {
	domain.User
	PasswordHash string
}

// Matches reports whether identifier names this user and secret is its password.
func (u UserRecord) Matches(identifier, secret string) bool {
	if identifier == "" || (identifier != u.Username && identifier != u.Email) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(secret)) == nil
}
