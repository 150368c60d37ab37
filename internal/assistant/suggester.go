// Package assistant turns a free-text order request into a draft order
// validated against the product and customer catalog.
package assistant

import "context"

// SuggestedItem is one line proposed by the model.
type SuggestedItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// Suggestion is the structured reply of a Suggester.
type Suggestion struct {
	CustomerName string          `json:"customerName"`
	Items        []SuggestedItem `json:"items"`
}

// Catalog lists the names a suggestion may use.
type Catalog struct {
	Products  []string
	Customers []string
}

// Suggester proposes an order for a prompt. Implementations should restrict
// names to catalog but callers never rely on it.
type Suggester interface {
	Suggest(ctx context.Context, prompt string, catalog Catalog) (Suggestion, error)
}

// SuggesterFunc adapts a function to Suggester.
type SuggesterFunc func(ctx context.Context, prompt string, catalog Catalog) (Suggestion, error)

// Suggest calls f.
func (f SuggesterFunc) Suggest(ctx context.Context, prompt string, catalog Catalog) (Suggestion, error) {
	return f(ctx, prompt, catalog)
}
