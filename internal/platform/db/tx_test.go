package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

type failingStarter struct{}

func (failingStarter) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return nil, errors.New("connection refused")
}

func TestWithTxBeginFailure(t *testing.T) {
	called := false
	err := WithTx(context.Background(), failingStarter{}, func(pgx.Tx) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "platform/db: begin tx")
	assert.False(t, called)
}
