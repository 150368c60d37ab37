// Package customers serves the customer list, route filtering and deletion.
package customers

import (
	"context"
	"fmt"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// AllRoutes is the route filter value that disables route filtering.
const AllRoutes = "All Routes"

// DeletePrompt is shown before a customer is removed.
const DeletePrompt = "Are you sure you want to delete this customer? This will not delete their past orders."

// ErrCreateNotImplemented is returned to callers allowed to add customers.
var ErrCreateNotImplemented = fmt.Errorf("customers: add customer: %w", httpx.ErrNotImplemented)

// Criteria narrows the customer list.
type Criteria struct {
	Name  string
	Route string
}

// Service coordinates customer operations.
type Service struct {
	store  store.Store
	policy *rbac.Policy
}

// NewService builds Service.
func NewService(st store.Store, policy *rbac.Policy) *Service {
	return &Service{store: st, policy: policy}
}

// Search lists customers matching every criterion.
func (s *Service) Search(ctx context.Context, role domain.Role, c Criteria) ([]domain.Customer, error) {
	if err := s.policy.CheckView(role, rbac.ViewCustomers); err != nil {
		return nil, err
	}
	list, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	return Filter(list, c), nil
}

// Routes returns AllRoutes followed by each distinct route in first-seen order.
func (s *Service) Routes(ctx context.Context, role domain.Role) ([]string, error) {
	if err := s.policy.CheckView(role, rbac.ViewCustomers); err != nil {
		return nil, err
	}
	list, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	return DistinctRoutes(list), nil
}

// Delete removes a customer after confirmation. Their orders are kept.
func (s *Service) Delete(ctx context.Context, role domain.Role, id int64, confirm shared.Confirmer) error {
	if err := s.policy.Check(role, rbac.ViewCustomers, rbac.CapDelete); err != nil {
		return err
	}
	if err := shared.Confirm(ctx, confirm, DeletePrompt); err != nil {
		return err
	}
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("customers: delete: %w", err)
	}
	return nil
}

// Create is gated like the real operation but not implemented.
func (s *Service) Create(_ context.Context, role domain.Role) error {
	if err := s.policy.Check(role, rbac.ViewCustomers, rbac.CapCreate); err != nil {
		return err
	}
	return ErrCreateNotImplemented
}

// Filter applies c. An empty route or AllRoutes matches every route.
func Filter(list []domain.Customer, c Criteria) []domain.Customer {
	out := make([]domain.Customer, 0, len(list))
	for _, cust := range list {
		if !shared.ContainsFold(cust.Name, c.Name) {
			continue
		}
		if c.Route != "" && c.Route != AllRoutes && cust.Route != c.Route {
			continue
		}
		out = append(out, cust)
	}
	return out
}

// DistinctRoutes lists AllRoutes then each route once.
func DistinctRoutes(list []domain.Customer) []string {
	routes := []string{AllRoutes}
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if _, ok := seen[c.Route]; ok {
			continue
		}
		seen[c.Route] = struct{}{}
		routes = append(routes, c.Route)
	}
	return routes
}
