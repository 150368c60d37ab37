package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/observability"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
	"github.com/qazi-erp/qazi-erp/internal/store/storetest"
)

func fixed(s Suggestion, err error) SuggesterFunc {
	return func(context.Context, string, Catalog) (Suggestion, error) { return s, err }
}

func TestDraftValidSuggestion(t *testing.T) {
	var seen Catalog
	suggester := SuggesterFunc(func(_ context.Context, prompt string, c Catalog) (Suggestion, error) {
		seen = c
		return Suggestion{CustomerName: "corner mart", Items: []SuggestedItem{{ProductName: "Coca-Cola 1.5L", Quantity: 50}}}, nil
	})
	svc := NewService(store.NewMemory(), rbac.Default(), suggester, observability.NewMetrics())

	draft, err := svc.Draft(context.Background(), domain.RoleBooker, "Create order for Corner Mart: 50 Cokes")
	require.NoError(t, err)
	assert.True(t, draft.Valid)
	assert.Equal(t, "Corner Mart", draft.CustomerName)
	assert.Equal(t, int64(2), draft.CustomerID)
	assert.True(t, draft.Total.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, DemoNote, draft.Note)
	assert.Contains(t, draft.Reply, "**Corner Mart**")
	assert.Contains(t, draft.Reply, "- 50 x Coca-Cola 1.5L")
	assert.Len(t, seen.Products, 7)
	assert.Contains(t, seen.Customers, "Quick Stop Groceries")
}

func TestDraftFlagsUnknownNames(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default(), fixed(Suggestion{
		CustomerName: "Mega Mart",
		Items: []SuggestedItem{
			{ProductName: "Sprite 1.5L", Quantity: 5},
			{ProductName: "Lays Chips", Quantity: 0},
		},
	}, nil), nil)

	draft, err := svc.Draft(context.Background(), domain.RoleBooker, "order for mega mart")
	require.NoError(t, err)
	assert.False(t, draft.Valid)
	assert.Empty(t, draft.Note)
	assert.Len(t, draft.Problems, 3)
	assert.False(t, draft.Items[0].Known)
	assert.True(t, draft.Items[1].Known)
	assert.Equal(t, "quantity must be positive", draft.Items[1].Problem)
	assert.True(t, draft.Total.IsZero())
}

func TestDraftSuggesterFailure(t *testing.T) {
	svc := NewService(store.NewMemory(), rbac.Default(), fixed(Suggestion{}, errors.New("quota exceeded")), nil)

	draft, err := svc.Draft(context.Background(), domain.RoleBooker, "something")
	require.NoError(t, err)
	assert.True(t, draft.Failed)
	assert.Equal(t, FailureMessage, draft.Reply)
}

func TestDraftGates(t *testing.T) {
	spy := storetest.NewSpy()
	svc := NewService(spy, rbac.Default(), fixed(Suggestion{}, nil), nil)

	_, err := svc.Draft(context.Background(), domain.RoleDriver, "x")
	assert.ErrorIs(t, err, rbac.ErrForbidden)
	_, err = svc.Draft(context.Background(), domain.RoleBooker, "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, spy.Calls())

	_, err = NewService(spy, rbac.Default(), nil, nil).Draft(context.Background(), domain.RoleBooker, "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseSuggestion(t *testing.T) {
	s, err := ParseSuggestion("```json\n{\"customerName\":\"Corner Mart\",\"items\":[{\"productName\":\"Pepsi 1.5L\",\"quantity\":3}]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Corner Mart", s.CustomerName)
	assert.Equal(t, 3, s.Items[0].Quantity)

	_, err = ParseSuggestion("  ")
	assert.Error(t, err)
	_, err = ParseSuggestion("I cannot find that customer.")
	assert.Error(t, err)
}

func TestSystemInstructionListsCatalog(t *testing.T) {
	text := SystemInstruction(Catalog{Products: []string{"Lays Chips", "Pepsi 1.5L"}, Customers: []string{"Corner Mart"}})
	assert.Contains(t, text, "Available Products: Lays Chips, Pepsi 1.5L")
	assert.Contains(t, text, "Available Customers: Corner Mart")
}
