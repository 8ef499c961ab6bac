package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/testutil"
)

func TestOpenRejectsBadSettings(t *testing.T) {
	_, err := database.Open(config.Database{Driver: "oracle", WriterDSN: "x"})
	assert.Error(t, err)

	_, err = database.Open(config.Database{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestSharedReaderWhenDSNMatches(t *testing.T) {
	cfg := testutil.Config(t)
	conns, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	assert.Same(t, conns.Writer, conns.Reader)
	assert.NoError(t, conns.Ping(context.Background()))
}

func TestRunInTxRollsBack(t *testing.T) {
	conns := testutil.NewConnections(t, testutil.Config(t))
	ctx := context.Background()
	errValidation := errors.New("validation failed")

	err := conns.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		customer := &entity.Customer{Name: "Ada", ContactInfo: "ada@example.com"}
		if _, err := tx.NewInsert().Model(customer).Exec(ctx); err != nil {
			return err
		}
		return errValidation
	})
	assert.ErrorIs(t, err, errValidation)

	n, err := conns.Reader.NewSelect().Model((*entity.Customer)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, conns.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&entity.Customer{Name: "Ada", ContactInfo: "ada@example.com"}).Exec(ctx)
		return err
	}))
	n, err = conns.Reader.NewSelect().Model((*entity.Customer)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
