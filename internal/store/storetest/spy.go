// Package storetest provides store doubles for handler and service tests.
package storetest

import (
	"context"
	"sync"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// Spy records every call before delegating to an in-memory store.
type Spy struct {
	*store.Memory

	mu    sync.Mutex
	calls []string
	// Err, when set, is returned by every call instead of delegating.
	Err error
}

// NewSpy wraps a freshly seeded memory store.
func NewSpy() *Spy {
	return &Spy{Memory: store.NewMemory()}
}

// Calls returns the recorded method names in order.
func (s *Spy) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Called reports whether method was invoked.
func (s *Spy) Called(method string) bool {
	for _, c := range s.Calls() {
		if c == method {
			return true
		}
	}
	return false
}

func (s *Spy) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)
	return s.Err
}

func (s *Spy) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.record("ListProducts"); err != nil {
		return nil, err
	}
	return s.Memory.ListProducts(ctx)
}

func (s *Spy) GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	if err := s.record("GetProducts"); err != nil {
		return nil, err
	}
	return s.Memory.GetProducts(ctx, ids)
}

func (s *Spy) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if err := s.record("GetProduct"); err != nil {
		return domain.Product{}, err
	}
	return s.Memory.GetProduct(ctx, id)
}

func (s *Spy) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.record("DeleteProduct"); err != nil {
		return err
	}
	return s.Memory.DeleteProduct(ctx, id)
}

func (s *Spy) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	if err := s.record("ListCustomers"); err != nil {
		return nil, err
	}
	return s.Memory.ListCustomers(ctx)
}

func (s *Spy) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	if err := s.record("GetCustomer"); err != nil {
		return domain.Customer{}, err
	}
	return s.Memory.GetCustomer(ctx, id)
}

func (s *Spy) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.record("DeleteCustomer"); err != nil {
		return err
	}
	return s.Memory.DeleteCustomer(ctx, id)
}

func (s *Spy) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if err := s.record("ListOrders"); err != nil {
		return nil, err
	}
	return s.Memory.ListOrders(ctx)
}

func (s *Spy) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if err := s.record("GetOrder"); err != nil {
		return domain.Order{}, err
	}
	return s.Memory.GetOrder(ctx, id)
}

func (s *Spy) CreateOrder(ctx context.Context, in store.NewOrderInput) (domain.Order, error) {
	if err := s.record("CreateOrder"); err != nil {
		return domain.Order{}, err
	}
	return s.Memory.CreateOrder(ctx, in)
}

func (s *Spy) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.record("DeleteOrder"); err != nil {
		return err
	}
	return s.Memory.DeleteOrder(ctx, id)
}

func (s *Spy) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	if err := s.record("UpdateOrderStatus"); err != nil {
		return domain.Order{}, err
	}
	return s.Memory.UpdateOrderStatus(ctx, id, status)
}

func (s *Spy) Authenticate(ctx context.Context, identifier, secret string) (domain.User, error) {
	if err := s.record("Authenticate"); err != nil {
		return domain.User{}, err
	}
	return s.Memory.Authenticate(ctx, identifier, secret)
}

func (s *Spy) ListBookerLocations(ctx context.Context) ([]domain.BookerLocation, error) {
	if err := s.record("ListBookerLocations"); err != nil {
		return nil, err
	}
	return s.Memory.ListBookerLocations(ctx)
}

var _ store.Store = (*Spy)(nil)
