// Package inventory serves the product list, its search, deletion and export.
package inventory

import (
	"context"
	"fmt"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// DeletePrompt is shown before a product is removed.
const DeletePrompt = "Are you sure you want to delete this product? This action cannot be undone."

// ErrNothingToExport is returned when the filtered list is empty.
var ErrNothingToExport = fmt.Errorf("inventory: nothing to export: %w", httpx.ErrValidation)

// ErrCreateNotImplemented is returned to callers allowed to add products.
var ErrCreateNotImplemented = fmt.Errorf("inventory: add product: %w", httpx.ErrNotImplemented)

// Row is a product with its derived stock label.
type Row struct {
	domain.Product
	LowStock    bool   `json:"low_stock"`
	StockStatus string `json:"stock_status"`
}

// Service coordinates inventory operations.
type Service struct {
	store  store.Store
	policy *rbac.Policy
}

// NewService builds Service.
func NewService(st store.Store, policy *rbac.Policy) *Service {
	return &Service{store: st, policy: policy}
}

// Search returns products whose name contains query, ignoring case.
func (s *Service) Search(ctx context.Context, role domain.Role, query string) ([]domain.Product, error) {
	if err := s.policy.CheckView(role, rbac.ViewInventory); err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list products: %w", err)
	}
	return Filter(products, query), nil
}

// List is Search decorated with stock labels.
func (s *Service) List(ctx context.Context, role domain.Role, query string) ([]Row, error) {
	products, err := s.Search(ctx, role, query)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, Row{Product: p, LowStock: p.IsLowStock(), StockStatus: p.StockStatus()})
	}
	return rows, nil
}

// Export returns the products to write for query.
func (s *Service) Export(ctx context.Context, role domain.Role, query string) ([]domain.Product, error) {
	products, err := s.Search(ctx, role, query)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNothingToExport
	}
	return products, nil
}

// Delete removes a product after confirmation. Orders referencing it keep
// their lines.
func (s *Service) Delete(ctx context.Context, role domain.Role, id int64, confirm shared.Confirmer) error {
	if err := s.policy.Check(role, rbac.ViewInventory, rbac.CapDelete); err != nil {
		return err
	}
	if err := shared.Confirm(ctx, confirm, DeletePrompt); err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("inventory: delete product: %w", err)
	}
	return nil
}

// Create is gated like the real operation but not implemented.
func (s *Service) Create(_ context.Context, role domain.Role) error {
	if err := s.policy.Check(role, rbac.ViewInventory, rbac.CapCreate); err != nil {
		return err
	}
	return ErrCreateNotImplemented
}

// Filter keeps products whose name contains query, ignoring case.
func Filter(products []domain.Product, query string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if shared.ContainsFold(p.Name, query) {
			out = append(out, p)
		}
	}
	return out
}
