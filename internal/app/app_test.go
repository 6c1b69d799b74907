package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/config"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/types"
)

func TestApp_HydrateRestoresState(t *testing.T) {
	ctx := context.Background()
	var cfg config.Config
	cfg.Writer.CoalesceWindow = time.Millisecond

	tables := MemoryTables()
	first := New(cfg, tables)

	res, err := first.Ledger.Register(ctx, &entity.Material{
		ID:        "m1",
		Code:      "BELT",
		Locations: []entity.LocationBalance{{Name: "A", Quantity: types.NewQuantity(4)}},
	})
	require.NoError(t, err)
	_, err = first.Ledger.Inbound(ctx, "m1", "B", types.NewQuantity(2), "purchase")
	require.NoError(t, err)
	first.WorkOrders.Save(ctx, &entity.WorkOrder{ID: "wo-1", Number: "77"})

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, res.Ack.Wait(waitCtx))
	require.NoError(t, first.Close(waitCtx))

	second := New(cfg, tables)
	require.NoError(t, second.Hydrate(ctx))

	m, err := second.Ledger.GetMaterial(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(6), m.CurrentStock)
	assert.True(t, second.WorkOrders.Exists("wo-1"))

	v, err := second.Ledger.Verify(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, v.OK())
	assert.Nil(t, second.Store())
}
