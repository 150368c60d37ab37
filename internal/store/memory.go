package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

// Memory is an in-process Store seeded with demo data. Reads return copies;
// writes replace records by id and the last write wins.
type Memory struct {
	mu        sync.RWMutex
	users     []UserRecord
	products  []domain.Product
	customers []domain.Customer
	orders    []domain.Order
	locations []domain.BookerLocation

	// nextOrderID and nextItemID only grow so deleted ids are never reissued.
	nextOrderID int64
	nextItemID  int64

	minLatency time.Duration
	maxLatency time.Duration
}

// MemoryOption customises a Memory store.
type MemoryOption func(*Memory)

// WithLatency delays every call by a random duration in [min, max].
func WithLatency(min, max time.Duration) MemoryOption {
	return func(m *Memory) {
		m.minLatency = min
		m.maxLatency = max
	}
}

// WithDataset replaces the demo data.
func WithDataset(ds Dataset) MemoryOption {
	return func(m *Memory) {
		m.load(ds)
	}
}

// NewMemory constructs a Memory store holding Seed data unless overridden.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{}
	m.load(Seed())
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) load(ds Dataset) {
	m.users = slices.Clone(ds.Users)
	m.products = slices.Clone(ds.Products)
	m.customers = slices.Clone(ds.Customers)
	m.orders = make([]domain.Order, 0, len(ds.Orders))
	for _, o := range ds.Orders {
		m.orders = append(m.orders, o.Clone())
	}
	m.locations = slices.Clone(ds.Locations)
	m.nextOrderID, m.nextItemID = 1001, 1
	for _, o := range m.orders {
		m.nextOrderID = max(m.nextOrderID, o.ID+1)
		for _, item := range o.Items {
			m.nextItemID = max(m.nextItemID, item.ID+1)
		}
	}
}

// wait simulates network latency and stops early when ctx ends.
func (m *Memory) wait(ctx context.Context) error {
	d := m.minLatency
	if m.maxLatency > m.minLatency {
		d += time.Duration(rand.Int64N(int64(m.maxLatency - m.minLatency + 1)))
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Memory) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.products), nil
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if err := m.wait(ctx); err != nil {
		return domain.Product{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := slices.IndexFunc(m.products, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return m.products[idx], nil
}

func (m *Memory) GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]domain.Product, len(ids))
	for _, p := range m.products {
		if slices.Contains(ids, p.ID) {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.products)
	m.products = slices.DeleteFunc(m.products, func(p domain.Product) bool { return p.ID == id })
	if len(m.products) == before {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

func (m *Memory) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.customers), nil
}

func (m *Memory) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	if err := m.wait(ctx); err != nil {
		return domain.Customer{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := slices.IndexFunc(m.customers, func(c domain.Customer) bool { return c.ID == id })
	if idx < 0 {
		return domain.Customer{}, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return m.customers[idx], nil
}

// DeleteCustomer removes only the customer; its orders stay.
func (m *Memory) DeleteCustomer(ctx context.Context, id int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.customers)
	m.customers = slices.DeleteFunc(m.customers, func(c domain.Customer) bool { return c.ID == id })
	if len(m.customers) == before {
		return fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return nil
}

func (m *Memory) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (m *Memory) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if err := m.wait(ctx); err != nil {
		return domain.Order{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.orderIndex(id)
	if idx < 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return m.orders[idx].Clone(), nil
}

func (m *Memory) CreateOrder(ctx context.Context, in NewOrderInput) (domain.Order, error) {
	if err := m.wait(ctx); err != nil {
		return domain.Order{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order := domain.NewOrder(m.nextOrderID, in.CustomerID, in.Date, m.nextItemID, in.Lines)
	m.nextOrderID++
	m.nextItemID += int64(len(in.Lines))
	m.orders = append(m.orders, order)
	return order.Clone(), nil
}

func (m *Memory) DeleteOrder(ctx context.Context, id int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.orderIndex(id)
	if idx < 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	m.orders = slices.Delete(m.orders, idx, idx+1)
	return nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	if err := m.wait(ctx); err != nil {
		return domain.Order{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.orderIndex(id)
	if idx < 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	m.orders[idx].Status = status
	return m.orders[idx].Clone(), nil
}

func (m *Memory) Authenticate(ctx context.Context, identifier, secret string) (domain.User, error) {
	if err := m.wait(ctx); err != nil {
		return domain.User{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Matches(identifier, secret) {
			return u.User, nil
		}
	}
	return domain.User{}, ErrInvalidCredentials
}

func (m *Memory) ListBookerLocations(ctx context.Context) ([]domain.BookerLocation, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.locations), nil
}

func (m *Memory) orderIndex(id int64) int {
	return slices.IndexFunc(m.orders, func(o domain.Order) bool { return o.ID == id })
}

var _ Store = (*Memory)(nil)
