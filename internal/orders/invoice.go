package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// Invoice labels used when a weak reference no longer resolves.
const (
	UnknownInvoiceCustomer = "Unknown customer"
	UnknownInvoiceProduct  = "Unknown product"
	PaymentTerms           = "Due Upon Receipt"
	InvoiceFooter          = "Qazi Enterprises - Quality You Can Trust"
)

// InvoiceDeletePrompt is shown before an order is deleted from its invoice.
const InvoiceDeletePrompt = "Are you sure you want to delete Order #%d? This action cannot be undone."

// InvoiceParty is the billed customer.
type InvoiceParty struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Resolved bool   `json:"resolved"`
}

// InvoiceLine is one order item with its product name resolved.
type InvoiceLine struct {
	ItemID      int64           `json:"item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Resolved    bool            `json:"resolved"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	// Consistent is false when the stored subtotal differs from quantity x price.
	Consistent bool `json:"consistent"`
}

// Invoice is the printable view of one order.
type Invoice struct {
	Number     string             `json:"number"`
	OrderID    int64              `json:"order_id"`
	Date       string             `json:"date"`
	Status     domain.OrderStatus `json:"status"`
	Terms      string             `json:"payment_terms"`
	Customer   InvoiceParty       `json:"customer"`
	Lines      []InvoiceLine      `json:"lines"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	Tax        decimal.Decimal    `json:"tax"`
	Total      decimal.Decimal    `json:"total"`
	Consistent bool               `json:"consistent"`
	Footer     string             `json:"footer"`
}

// InvoiceNumber formats an order id as an invoice number.
func InvoiceNumber(id int64) string {
	return fmt.Sprintf("INV-%04d", id)
}

// Invoice resolves the order's customer and products in two lookups.
func (s *Service) Invoice(ctx context.Context, role domain.Role, id int64) (Invoice, error) {
	if err := s.policy.CheckView(role, rbac.ViewOrders); err != nil {
		return Invoice{}, err
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return Invoice{}, fmt.Errorf("orders: invoice: %w", err)
	}

	party := InvoiceParty{ID: order.CustomerID, Name: UnknownInvoiceCustomer}
	customer, err := s.store.GetCustomer(ctx, order.CustomerID)
	switch {
	case err == nil:
		party = InvoiceParty{ID: customer.ID, Name: customer.Name, Address: customer.Address, Phone: customer.Phone, Resolved: true}
	case !errors.Is(err, store.ErrNotFound):
		return Invoice{}, fmt.Errorf("orders: invoice customer: %w", err)
	}

	products, err := s.store.GetProducts(ctx, order.ProductIDs())
	if err != nil {
		return Invoice{}, fmt.Errorf("orders: invoice products: %w", err)
	}
	return BuildInvoice(order, party, products), nil
}

// BuildInvoice assembles an invoice from already resolved references. Tax is
// always zero.
func BuildInvoice(order domain.Order, party InvoiceParty, products map[int64]domain.Product) Invoice {
	inv := Invoice{
		Number:     InvoiceNumber(order.ID),
		OrderID:    order.ID,
		Date:       order.Date,
		Status:     order.Status,
		Terms:      PaymentTerms,
		Customer:   party,
		Lines:      make([]InvoiceLine, 0, len(order.Items)),
		Subtotal:   order.Total,
		TaxRate:    decimal.Zero,
		Tax:        decimal.Zero,
		Total:      order.Total,
		Consistent: order.Verify() == nil,
		Footer:     InvoiceFooter,
	}
	for _, item := range order.Items {
		line := InvoiceLine{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: UnknownInvoiceProduct,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    item.Subtotal,
			Consistent:  item.Consistent(),
		}
		if p, ok := products[item.ProductID]; ok {
			line.ProductName = p.Name
			line.Resolved = true
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv
}
