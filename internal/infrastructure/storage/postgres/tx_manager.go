package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"maintledger/internal/core/tx"
	"maintledger/pkg/logger"
)

var tracer = otel.Tracer("maintledger/tx")

// Compile-time check that TxManager implements tx.ReadOnlyManager.
var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxOptions configures transaction behavior.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode

	// StatementTimeout protects against long-running statements.
	StatementTimeout time.Duration
}

// DefaultTxOptions returns production-safe defaults.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// TxManager runs functions in a transaction carried by the context.
// Nested calls reuse the outer transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

type txKey struct{}

// RunInTransaction executes fn within a read-write transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultTxOptions(), fn)
}

// ReadOnly runs fn in a read-only repeatable-read transaction, so reads
// across several tables observe one snapshot.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := DefaultTxOptions()
	opts.IsolationLevel = pgx.RepeatableRead
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// activeTx is what the context carries while fn runs.
type activeTx struct {
	tx       pgx.Tx
	readOnly bool
}

var errWriteInReadOnly = errors.New("read-write transaction requested inside a read-only one")

// RunInTransactionWithOptions runs fn in a new transaction, or in the one
// already carried by ctx. Joining a read-only transaction for writing fails.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) (err error) {
	if outer, ok := ctx.Value(txKey{}).(activeTx); ok {
		if outer.readOnly && opts.AccessMode != pgx.ReadOnly {
			return errWriteInReadOnly
		}
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
			attribute.String("tx.access", string(opts.AccessMode)),
		))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	pgTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op. A detached context lets
	// it finish when ctx is already cancelled, and it also runs on panic.
	defer func() {
		if rbErr := pgTx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error(ctx, "rollback failed", "error", rbErr, "cause", err)
		}
	}()

	if opts.StatementTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", opts.StatementTimeout.Milliseconds())
		if _, err = pgTx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err = fn(context.WithValue(ctx, txKey{}, activeTx{tx: pgTx, readOnly: opts.AccessMode == pgx.ReadOnly})); err != nil {
		return err
	}
	if err = pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetTx returns the transaction carried by ctx, or nil.
func (m *TxManager) GetTx(ctx context.Context) pgx.Tx {
	if t, ok := ctx.Value(txKey{}).(activeTx); ok {
		return t.tx
	}
	return nil
}

// Querier is satisfied by both pgx.Tx and the pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the transaction in ctx, or the pool outside one.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t
	}
	return m.pool
}

// Ping checks database connectivity.
func (m *TxManager) Ping(ctx context.Context) error {
	return m.pool.Ping(ctx)
}
