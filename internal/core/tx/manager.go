// Package tx declares the transaction contract used outside the storage
// layer. The PostgreSQL implementation carries the open transaction in the
// context, so callees pick it up without extra parameters.
package tx

import "context"

// Manager commits when fn returns nil and rolls back otherwise.
// A call made while a transaction is already in ctx joins it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager also offers snapshot reads. Every statement run inside
// ReadOnly sees the same committed state.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
