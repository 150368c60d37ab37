// Package reports produces the daily sales summary and the field staff map.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// ErrInvalidDate rejects a date that is not YYYY-MM-DD.
var ErrInvalidDate = fmt.Errorf("reports: date must be YYYY-MM-DD: %w", httpx.ErrValidation)

// Service computes reports from the store.
type Service struct {
	store  store.Store
	policy *rbac.Policy
	now    func() time.Time
}

// NewService builds Service.
func NewService(st store.Store, policy *rbac.Policy) *Service {
	return &Service{store: st, policy: policy, now: time.Now}
}

// ParseDay reads a YYYY-MM-DD value. Empty means today.
func (s *Service) ParseDay(raw string) (time.Time, error) {
	if raw == "" {
		return s.now(), nil
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return day, nil
}

// Daily builds the summary for day.
func (s *Service) Daily(ctx context.Context, role domain.Role, day time.Time) (DailySummary, error) {
	if err := s.policy.CheckView(role, rbac.ViewReports); err != nil {
		return DailySummary{}, err
	}
	return s.Compute(ctx, day)
}

// Compute builds the summary without a role check. Background jobs use it.
func (s *Service) Compute(ctx context.Context, day time.Time) (DailySummary, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return DailySummary{}, fmt.Errorf("reports: list orders: %w", err)
	}
	ids := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, o := range orders {
		for _, id := range o.ProductIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	products, err := s.store.GetProducts(ctx, ids)
	if err != nil {
		return DailySummary{}, fmt.Errorf("reports: resolve products: %w", err)
	}
	names := make(map[int64]string, len(products))
	for id, p := range products {
		names[id] = p.Name
	}
	return Summarize(day, orders, names), nil
}

// Locations lists the last known position of every booker and driver.
func (s *Service) Locations(ctx context.Context, role domain.Role) ([]domain.BookerLocation, error) {
	if err := s.policy.CheckView(role, rbac.ViewReports); err != nil {
		return nil, err
	}
	locations, err := s.store.ListBookerLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: list locations: %w", err)
	}
	return locations, nil
}
