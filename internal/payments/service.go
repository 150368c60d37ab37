// Package payments summarises receivables from order statuses.
package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/orders"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// Summary is the receivables position. Paid orders are collected; Pending
// and Delivered orders are outstanding.
type Summary struct {
	Collected   decimal.Decimal            `json:"collected"`
	Outstanding decimal.Decimal            `json:"outstanding"`
	Counts      map[domain.OrderStatus]int `json:"counts"`
	Unpaid      []orders.Row               `json:"unpaid"`
}

// Service loads the payments view.
type Service struct {
	store  store.Store
	policy *rbac.Policy
}

// NewService builds Service.
func NewService(st store.Store, policy *rbac.Policy) *Service {
	return &Service{store: st, policy: policy}
}

// Summary fetches orders and customers concurrently and aggregates them.
func (s *Service) Summary(ctx context.Context, role domain.Role) (Summary, error) {
	if err := s.policy.CheckView(role, rbac.ViewPayments); err != nil {
		return Summary{}, err
	}
	var (
		list      []domain.Order
		customers []domain.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		list, err = s.store.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.store.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("payments: load: %w", err)
	}
	return Summarize(orders.JoinCustomers(list, customers)), nil
}

// Summarize aggregates rows already joined with customer names.
func Summarize(rows []orders.Row) Summary {
	sum := Summary{
		Collected:   decimal.Zero,
		Outstanding: decimal.Zero,
		Counts:      make(map[domain.OrderStatus]int, len(domain.OrderStatuses())),
		Unpaid:      make([]orders.Row, 0),
	}
	for _, status := range domain.OrderStatuses() {
		sum.Counts[status] = 0
	}
	for _, row := range rows {
		sum.Counts[row.Status]++
		if row.Status == domain.OrderStatusPaid {
			sum.Collected = sum.Collected.Add(row.Total)
			continue
		}
		sum.Outstanding = sum.Outstanding.Add(row.Total)
		sum.Unpaid = append(sum.Unpaid, row)
	}
	return sum
}
