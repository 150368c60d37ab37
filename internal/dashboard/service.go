package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// View is the dashboard payload for one role.
type View struct {
	Role               domain.Role `json:"role"`
	Heading            string      `json:"heading"`
	Message            string      `json:"message"`
	Metrics            *Metrics    `json:"metrics,omitempty"`
	AssistantAvailable bool        `json:"assistant_available"`
}

// Service loads the dashboard for a role.
type Service struct {
	store     store.Store
	policy    *rbac.Policy
	assistant bool
}

// NewService constructs a Service. assistant reports whether the order
// assistant is configured.
func NewService(st store.Store, policy *rbac.Policy, assistant bool) *Service {
	return &Service{store: st, policy: policy, assistant: assistant}
}

// Load builds the dashboard. Drivers get the welcome text only and cause no
// data fetch.
func (s *Service) Load(ctx context.Context, role domain.Role) (View, error) {
	if err := s.policy.CheckView(role, rbac.ViewDashboard); err != nil {
		return View{}, err
	}
	view := View{
		Role:    role,
		Heading: "Welcome to Qazi Enterprises ERP!",
		Message: "Select an option from the sidebar to get started.",
	}
	switch role {
	case domain.RoleBooker:
		view.Heading = "Welcome, Booker!"
		view.Message = "You can create a new order by describing it in natural language below."
		view.AssistantAvailable = s.assistant
	case domain.RoleAdmin:
		view.Message = "For interactive order creation, please log in as a Booker."
	case domain.RoleDriver:
		return view, nil
	}

	var (
		products  []domain.Product
		orders    []domain.Order
		customers []domain.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.store.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.store.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.store.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, fmt.Errorf("dashboard: load: %w", err)
	}
	metrics := Compute(products, orders, customers)
	view.Metrics = &metrics
	return view, nil
}
