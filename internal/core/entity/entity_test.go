package entity

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/types"
)

func TestMaterial_LocationHelpers(t *testing.T) {
	m := &Material{ID: "m1", Locations: []LocationBalance{
		{Name: "A", Quantity: types.NewQuantity(5)},
		{Name: "B", Quantity: types.NewQuantity(3)},
	}}

	assert.Equal(t, 1, m.LocationIndex(" B "))
	assert.Equal(t, -1, m.LocationIndex("C"))
	assert.Equal(t, types.Quantity(0), m.QuantityAt("C"))
	assert.Equal(t, types.NewQuantity(8), m.SumLocations())

	c := m.Clone()
	c.Locations[0].Quantity = 0
	assert.Equal(t, types.NewQuantity(5), m.Locations[0].Quantity)
}

func TestMaterial_ValidateDuplicateLocation(t *testing.T) {
	m := &Material{ID: "m1", Locations: []LocationBalance{{Name: "A"}, {Name: " A"}}}
	err := m.Validate(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateLocation))
}

func TestStockMovement_LocationDeltas(t *testing.T) {
	now := time.Now()

	tr := NewStockMovement(MovementTransfer, "m1", types.NewQuantity(3), now)
	tr.FromLocation, tr.ToLocation = "A", "C"
	assert.Equal(t, []LocationBalance{
		{Name: "A", Quantity: types.NewQuantity(-3)},
		{Name: "C", Quantity: types.NewQuantity(3)},
	}, tr.LocationDeltas())
	assert.True(t, tr.SignedQuantity().IsZero())

	fifo := NewStockMovement(MovementOut, "m1", types.NewQuantity(6), now)
	fifo.Allocations = []LocationBalance{
		{Name: "A", Quantity: types.NewQuantity(5)},
		{Name: "B", Quantity: types.NewQuantity(1)},
	}
	require.NoError(t, fifo.Validate(context.Background()))
	assert.Len(t, fifo.LocationDeltas(), 2)
	assert.Equal(t, types.NewQuantity(-6), fifo.SignedQuantity())
}

func TestCostOverride_JSON(t *testing.T) {
	var o CostOverride
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"300"}`), &o))
	assert.Equal(t, OverrideAuto, o.Mode)
	assert.False(t, o.IsManual())

	require.NoError(t, json.Unmarshal([]byte(`{"mode":"manual","amount":"300"}`), &o))
	assert.True(t, o.IsManual())
	assert.True(t, o.Amount.Equal(types.MustMoney("300")))

	assert.Error(t, json.Unmarshal([]byte(`{"mode":"both"}`), &o))
}

func TestWorkOrder_Executor(t *testing.T) {
	wo := &WorkOrder{ID: "wo1"}
	st := wo.Executor("e1")
	assert.Equal(t, ExecutorIdle, st.Status)
	assert.Equal(t, "IDLE", st.Status.String())
	assert.Same(t, st, wo.Executor("e1"))
}

func TestWorkOrder_NilExecutorState(t *testing.T) {
	var wo WorkOrder
	require.NoError(t, json.Unmarshal([]byte(`{"id":"wo1","executorStates":{"e1":null}}`), &wo))

	err := wo.Validate(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	c := wo.Clone()
	assert.NotContains(t, c.ExecutorStates, "e1")

	st := wo.Executor("e1")
	require.NotNil(t, st)
	assert.Equal(t, ExecutorIdle, st.Status)
	require.NoError(t, wo.Validate(context.Background()))
}
