package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/shared"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// User-facing texts.
const (
	Greeting       = "Hello! How can I help you create an order today?"
	FailureMessage = "I'm having trouble understanding that. Could you please try rephrasing your order?"
	DemoNote       = "Order creation from chat is a demo. No order was actually created."
)

var (
	// ErrUnavailable is returned when no Suggester is configured.
	ErrUnavailable = fmt.Errorf("assistant: not configured: %w", httpx.ErrUnavailable)
	// ErrEmptyPrompt rejects a blank request.
	ErrEmptyPrompt = fmt.Errorf("assistant: prompt is empty: %w", httpx.ErrValidation)
)

// DraftItem is a suggested line after catalog validation.
type DraftItem struct {
	ProductName string          `json:"product_name"`
	ProductID   int64           `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Known       bool            `json:"known"`
	Problem     string          `json:"problem,omitempty"`
}

// Draft is the assistant's reply. It is never persisted.
type Draft struct {
	Reply        string          `json:"reply"`
	CustomerName string          `json:"customer_name,omitempty"`
	CustomerID   int64           `json:"customer_id,omitempty"`
	Items        []DraftItem     `json:"items"`
	Total        decimal.Decimal `json:"estimated_total"`
	Valid        bool            `json:"valid"`
	Problems     []string        `json:"problems,omitempty"`
	Failed       bool            `json:"failed"`
	Note         string          `json:"note,omitempty"`
}

// Service drafts orders from free text.
type Service struct {
	store     store.Store
	policy    *rbac.Policy
	suggester Suggester
	metrics   *observability.Metrics
}

// NewService builds Service. A nil suggester disables drafting.
func NewService(st store.Store, policy *rbac.Policy, suggester Suggester, metrics *observability.Metrics) *Service {
	return &Service{store: st, policy: policy, suggester: suggester, metrics: metrics}
}

// Enabled reports whether a Suggester is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.suggester != nil
}

// Draft asks the Suggester for an order and checks every name against the
// catalog. Suggester failures produce FailureMessage rather than an error.
func (s *Service) Draft(ctx context.Context, role domain.Role, prompt string) (Draft, error) {
	if err := s.policy.Check(role, rbac.ViewOrders, rbac.CapCreate); err != nil {
		return Draft{}, err
	}
	if !s.Enabled() {
		return Draft{}, ErrUnavailable
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Draft{}, ErrEmptyPrompt
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("assistant: list products: %w", err)
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("assistant: list customers: %w", err)
	}

	suggestion, err := s.suggester.Suggest(ctx, prompt, catalogOf(products, customers))
	if err != nil {
		if ctx.Err() != nil {
			return Draft{}, ctx.Err()
		}
		s.metrics.ObserveAssistantDraft("error")
		return Draft{Reply: FailureMessage, Items: []DraftItem{}, Total: decimal.Zero, Failed: true}, nil
	}

	draft := Validate(suggestion, products, customers)
	if draft.Valid {
		s.metrics.ObserveAssistantDraft("valid")
	} else {
		s.metrics.ObserveAssistantDraft("invalid")
	}
	return draft, nil
}

// Validate resolves suggestion against the catalog. Names match exactly
// first, then ignoring case.
func Validate(suggestion Suggestion, products []domain.Product, customers []domain.Customer) Draft {
	draft := Draft{
		CustomerName: suggestion.CustomerName,
		Items:        make([]DraftItem, 0, len(suggestion.Items)),
		Total:        decimal.Zero,
		Valid:        true,
	}
	flag := func(problem string) {
		draft.Valid = false
		draft.Problems = append(draft.Problems, problem)
	}

	if c, ok := matchName(customers, suggestion.CustomerName, func(c domain.Customer) string { return c.Name }); ok {
		draft.CustomerName, draft.CustomerID = c.Name, c.ID
	} else {
		flag(fmt.Sprintf("Customer %q was not found.", suggestion.CustomerName))
	}
	if len(suggestion.Items) == 0 {
		flag("The order has no items.")
	}

	for _, item := range suggestion.Items {
		line := DraftItem{ProductName: item.ProductName, Quantity: item.Quantity, Price: decimal.Zero, Subtotal: decimal.Zero}
		if p, ok := matchName(products, item.ProductName, func(p domain.Product) string { return p.Name }); ok {
			line.ProductName, line.ProductID, line.Price, line.Known = p.Name, p.ID, p.Price, true
		} else {
			line.Problem = "not in catalog"
			flag(fmt.Sprintf("Product %q was not found.", item.ProductName))
		}
		if item.Quantity <= 0 {
			line.Problem = "quantity must be positive"
			flag(fmt.Sprintf("Quantity for %q must be positive.", item.ProductName))
		}
		if line.Known && item.Quantity > 0 {
			line.Subtotal = line.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			draft.Total = draft.Total.Add(line.Subtotal)
		}
		draft.Items = append(draft.Items, line)
	}

	draft.Reply = reply(draft)
	if draft.Valid {
		draft.Note = DemoNote
	}
	return draft
}

func reply(d Draft) string {
	var b strings.Builder
	if !d.Valid {
		b.WriteString("I couldn't draft that order:")
		for _, p := range d.Problems {
			b.WriteString("\n- ")
			b.WriteString(p)
		}
		return b.String()
	}
	fmt.Fprintf(&b, "Okay, I've drafted an order for **%s** with the following items:", d.CustomerName)
	for _, item := range d.Items {
		fmt.Fprintf(&b, "\n- %d x %s", item.Quantity, item.ProductName)
	}
	b.WriteString("\n\nShall I proceed with creating this order?")
	return b.String()
}

func matchName[T any](list []T, name string, nameOf func(T) string) (T, bool) {
	for _, v := range list {
		if nameOf(v) == name {
			return v, true
		}
	}
	for _, v := range list {
		if shared.EqualFold(nameOf(v), name) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func catalogOf(products []domain.Product, customers []domain.Customer) Catalog {
	c := Catalog{
		Products:  make([]string, 0, len(products)),
		Customers: make([]string, 0, len(customers)),
	}
	for _, p := range products {
		c.Products = append(c.Products, p.Name)
	}
	for _, cust := range customers {
		c.Customers = append(c.Customers, cust.Name)
	}
	return c
}
