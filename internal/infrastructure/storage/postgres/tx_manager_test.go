package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction_JoinsOuter(t *testing.T) {
	m := &TxManager{}
	ctx := context.WithValue(context.Background(), txKey{}, activeTx{})

	called := false
	err := m.RunInTransaction(ctx, func(inner context.Context) error {
		called = true
		assert.Equal(t, ctx, inner)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRunInTransaction_RejectsWriteInsideSnapshot(t *testing.T) {
	m := &TxManager{}
	ctx := context.WithValue(context.Background(), txKey{}, activeTx{readOnly: true})

	err := m.RunInTransaction(ctx, func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, errWriteInReadOnly)

	// Nested reads are fine.
	assert.NoError(t, m.ReadOnly(ctx, func(context.Context) error { return nil }))
}
