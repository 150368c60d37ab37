// Package settings exposes the read-only application settings view.
package settings

import (
	"github.com/shopspring/decimal"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/inventory"
	"github.com/qazi-erp/qazi-erp/internal/orders"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
)

// Runtime holds the deployment facts shown alongside the business rules.
type Runtime struct {
	Environment      string `json:"environment"`
	StoreDriver      string `json:"store_driver"`
	AssistantEnabled bool   `json:"assistant_enabled"`
	PDFEnabled       bool   `json:"pdf_enabled"`
}

// Settings is the settings view payload.
type Settings struct {
	LowStockThreshold int                  `json:"low_stock_threshold"`
	TaxRate           decimal.Decimal      `json:"tax_rate"`
	Currency          string               `json:"currency"`
	PaymentTerms      string               `json:"payment_terms"`
	InventoryExport   string               `json:"inventory_export_file"`
	OrdersExport      string               `json:"orders_export_file"`
	OrderStatuses     []domain.OrderStatus `json:"order_statuses"`
	Runtime           Runtime              `json:"runtime"`
}

// Service reports the settings in effect.
type Service struct {
	policy   *rbac.Policy
	currency string
	runtime  Runtime
}

// NewService builds Service.
func NewService(policy *rbac.Policy, currency string, runtime Runtime) *Service {
	return &Service{policy: policy, currency: currency, runtime: runtime}
}

// Current returns the settings for role.
func (s *Service) Current(role domain.Role) (Settings, error) {
	if err := s.policy.CheckView(role, rbac.ViewSettings); err != nil {
		return Settings{}, err
	}
	return Settings{
		LowStockThreshold: domain.LowStockThreshold,
		TaxRate:           decimal.Zero,
		Currency:          s.currency,
		PaymentTerms:      orders.PaymentTerms,
		InventoryExport:   inventory.ExportFileName,
		OrdersExport:      orders.ExportFileName,
		OrderStatuses:     domain.OrderStatuses(),
		Runtime:           s.runtime,
	}, nil
}
