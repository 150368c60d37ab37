// Package orders serves the order list, status changes, deletion, creation,
// invoices and the orders export.
package orders

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// DeletePrompt is shown before an order is removed.
const DeletePrompt = "Are you sure you want to delete this order? This action is permanent."

// UnknownCustomer labels rows whose customer no longer resolves.
const UnknownCustomer = "Unknown"

var (
	// ErrInvalidStatus rejects values outside the status enum.
	ErrInvalidStatus = fmt.Errorf("orders: invalid status: %w", httpx.ErrValidation)
	// ErrInvalidOrder rejects a create request that references unknown entities.
	ErrInvalidOrder = fmt.Errorf("orders: invalid order: %w", httpx.ErrValidation)
	// ErrNothingToExport is returned when the filtered list is empty.
	ErrNothingToExport = fmt.Errorf("orders: nothing to export: %w", httpx.ErrValidation)
)

// Criteria narrows the order list. Empty fields match everything.
type Criteria struct {
	Status   domain.OrderStatus
	Customer string
}

// Row is an order joined with its customer name.
type Row struct {
	domain.Order
	CustomerName string `json:"customer_name"`
	Units        int    `json:"units"`
}

// LineRequest is one requested order line.
type LineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateRequest is the payload accepted by Create.
type CreateRequest struct {
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	Date       string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Items      []LineRequest `json:"items" validate:"required,min=1,dive"`
}

// Service coordinates order operations.
type Service struct {
	store  store.Store
	policy *rbac.Policy
	now    func() time.Time
}

// NewService builds Service.
func NewService(st store.Store, policy *rbac.Policy) *Service {
	return &Service{store: st, policy: policy, now: time.Now}
}

// List returns the orders matching c, newest first, with customer names.
func (s *Service) List(ctx context.Context, role domain.Role, c Criteria) ([]Row, error) {
	if err := s.policy.CheckView(role, rbac.ViewOrders); err != nil {
		return nil, err
	}
	if c.Status != "" && !c.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, c.Status)
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders: list customers: %w", err)
	}
	return Filter(JoinCustomers(orders, customers), c), nil
}

// ChangeStatus moves an order to status. Every transition is allowed.
func (s *Service) ChangeStatus(ctx context.Context, role domain.Role, id int64, status domain.OrderStatus) (domain.Order, error) {
	if err := s.policy.Check(role, rbac.ViewOrders, rbac.CapStatus); err != nil {
		return domain.Order{}, err
	}
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	order, err := s.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders: change status: %w", err)
	}
	return order, nil
}

// Delete removes an order after confirmation. Products and customers are untouched.
func (s *Service) Delete(ctx context.Context, role domain.Role, id int64, confirm shared.Confirmer) error {
	return s.remove(ctx, role, id, confirm, DeletePrompt)
}

// DeleteFromInvoice is Delete with the prompt shown on the invoice page.
func (s *Service) DeleteFromInvoice(ctx context.Context, role domain.Role, id int64, confirm shared.Confirmer) error {
	return s.remove(ctx, role, id, confirm, fmt.Sprintf(InvoiceDeletePrompt, id))
}

func (s *Service) remove(ctx context.Context, role domain.Role, id int64, confirm shared.Confirmer, prompt string) error {
	if err := s.policy.Check(role, rbac.ViewOrders, rbac.CapDelete); err != nil {
		return err
	}
	if err := shared.Confirm(ctx, confirm, prompt); err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("orders: delete: %w", err)
	}
	return nil
}

// Create places a Pending order at current catalog prices.
func (s *Service) Create(ctx context.Context, role domain.Role, req CreateRequest) (domain.Order, error) {
	if err := s.policy.Check(role, rbac.ViewOrders, rbac.CapCreate); err != nil {
		return domain.Order{}, err
	}
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	if _, err := s.store.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("%w: customer %d does not exist", ErrInvalidOrder, req.CustomerID)
		}
		return domain.Order{}, fmt.Errorf("orders: create: %w", err)
	}

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: quantity for product %d must be positive", ErrInvalidOrder, item.ProductID)
		}
		ids = append(ids, item.ProductID)
	}
	products, err := s.store.GetProducts(ctx, ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders: create: %w", err)
	}
	lines := make([]domain.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return domain.Order{}, fmt.Errorf("%w: product %d does not exist", ErrInvalidOrder, item.ProductID)
		}
		lines = append(lines, domain.LineInput{ProductID: p.ID, Quantity: item.Quantity, Price: p.Price})
	}

	date := req.Date
	if date == "" {
		date = s.now().Format(time.DateOnly)
	}
	order, err := s.store.CreateOrder(ctx, store.NewOrderInput{CustomerID: req.CustomerID, Date: date, Lines: lines})
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders: create: %w", err)
	}
	return order, nil
}

// Export returns the rows to write for c.
func (s *Service) Export(ctx context.Context, role domain.Role, c Criteria) ([]Row, error) {
	rows, err := s.List(ctx, role, c)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}
	return rows, nil
}

// JoinCustomers pairs each order with its customer name, newest order first.
func JoinCustomers(orders []domain.Order, customers []domain.Customer) []Row {
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	rows := make([]Row, 0, len(orders))
	for _, o := range orders {
		name, ok := names[o.CustomerID]
		if !ok {
			name = UnknownCustomer
		}
		rows = append(rows, Row{Order: o, CustomerName: name, Units: o.Units()})
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return rows
}

// Filter keeps rows matching the status and customer name criteria.
func Filter(rows []Row, c Criteria) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if c.Status != "" && row.Status != c.Status {
			continue
		}
		if !shared.ContainsFold(row.CustomerName, c.Customer) {
			continue
		}
		out = append(out, row)
	}
	return out
}
