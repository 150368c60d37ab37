package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qazi-erp/qazi-erp/internal/store"
)

func TestOpenStoreMemory(t *testing.T) {
	st, closeFn, err := OpenStore(context.Background(), &Config{StoreDriver: StoreDriverMemory}, slog.Default())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.Memory{}, st)

	products, err := st.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 7)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, closeFn, err := OpenStore(context.Background(), &Config{StoreDriver: "sqlite"}, slog.Default())
	assert.ErrorContains(t, err, "unknown store driver")
	assert.NotNil(t, closeFn)
}
