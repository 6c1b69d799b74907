// Package record_repo provides the PostgreSQL record tables behind the
// write-behind writer. Every table stores one JSONB document per record id.
package record_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/persist"
	"maintledger/internal/infrastructure/storage/postgres"
)

// Tables
const (
	MaterialsTable      = "materials"
	StockMovementsTable = "stock_movements"
	WorkOrdersTable     = "work_orders"
	ProjectsTable       = "projects"
	AssetsTable         = "assets"
)

var recordColumns = postgres.ExtractDBColumns[postgres.RecordRow]()

// RecordRepo implements persist.Table over a JSONB record table.
type RecordRepo[T any] struct {
	tableName  string
	appendOnly bool
	builder    squirrel.StatementBuilderType
	txManager  *postgres.TxManager
	audit      *postgres.AuditService
	now        func() time.Time
}

// Option configures a RecordRepo.
type Option func(*options)

type options struct {
	appendOnly bool
	audit      *postgres.AuditService
}

// AppendOnly makes Upsert ignore rows that already exist. Journal tables
// use it so a retried write never rewrites history.
func AppendOnly() Option {
	return func(o *options) { o.appendOnly = true }
}

// WithAudit records every write in the audit trail, in the same transaction.
func WithAudit(a *postgres.AuditService) Option {
	return func(o *options) { o.audit = a }
}

// NewRecordRepo creates a repository for tableName.
func NewRecordRepo[T any](txManager *postgres.TxManager, tableName string, opts ...Option) *RecordRepo[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &RecordRepo[T]{
		tableName:  tableName,
		appendOnly: o.appendOnly,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txManager:  txManager,
		audit:      o.audit,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ persist.Table[struct{}] = (*RecordRepo[struct{}])(nil)

func (r *RecordRepo[T]) Name() string { return r.tableName }

func (r *RecordRepo[T]) listQuery(offset, limit int) (string, []any, error) {
	q := r.builder.
		Select(recordColumns...).
		From(r.tableName).
		OrderBy("id")
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q.ToSql()
}

// List returns records ordered by id.
func (r *RecordRepo[T]) List(ctx context.Context, offset, limit int) ([]T, error) {
	sql, args, err := r.listQuery(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []postgres.RecordRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var rec T
		if err := json.Unmarshal(row.Data, &rec); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("decode %s/%s: %w", r.tableName, row.ID, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get loads a single record.
func (r *RecordRepo[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	sql, args, err := r.builder.
		Select(recordColumns...).
		From(r.tableName).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return rec, fmt.Errorf("build query: %w", err)
	}

	var row postgres.RecordRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return rec, apperror.NewNotFound(r.tableName, id)
		}
		return rec, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return rec, apperror.NewInternal(fmt.Errorf("decode %s/%s: %w", r.tableName, id, err))
	}
	return rec, nil
}

func (r *RecordRepo[T]) upsertQuery(row postgres.RecordRow) (string, []any, error) {
	suffix := "ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at"
	if r.appendOnly {
		suffix = "ON CONFLICT (id) DO NOTHING"
	}
	return r.builder.
		Insert(r.tableName).
		SetMap(postgres.StructToMap(row)).
		Suffix(suffix).
		ToSql()
}

// Upsert stores record under id.
func (r *RecordRepo[T]) Upsert(ctx context.Context, id string, record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", r.tableName, id, err)
	}

	sql, args, err := r.upsertQuery(postgres.RecordRow{ID: id, Data: data, UpdatedAt: r.now()})
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", r.tableName, err)
		}
		return r.logAudit(ctx, postgres.AuditActionUpsert, id, data)
	})
}

// Delete removes the record. Missing rows are not an error.
func (r *RecordRepo[T]) Delete(ctx context.Context, id string) error {
	sql, args, err := r.builder.
		Delete(r.tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete %s: %w", r.tableName, err)
		}
		return r.logAudit(ctx, postgres.AuditActionDelete, id, nil)
	})
}

// Count returns the number of stored records.
func (r *RecordRepo[T]) Count(ctx context.Context) (int64, error) {
	sql, args, err := r.builder.Select("COUNT(*)").From(r.tableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.tableName, err)
	}
	return n, nil
}

// BulkInsert loads records into an empty table with COPY. It is meant for
// seeding; it bypasses the audit trail.
func (r *RecordRepo[T]) BulkInsert(ctx context.Context, records []T, idOf func(T) string) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := r.now()
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encode %s/%s: %w", r.tableName, idOf(rec), err)
		}
		rows = append(rows, []any{idOf(rec), data, now})
	}

	var copied int64
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := postgres.NewBatchInserter(r.txManager).CopyFromSlice(ctx, r.tableName, recordColumns, rows)
		if err != nil {
			return fmt.Errorf("copy %s: %w", r.tableName, err)
		}
		copied = n
		return nil
	})
	return copied, err
}

func (r *RecordRepo[T]) logAudit(ctx context.Context, action postgres.AuditAction, id string, payload []byte) error {
	if r.audit == nil {
		return nil
	}
	return r.audit.Log(ctx, postgres.AuditEntry{
		TableName: r.tableName,
		RecordID:  id,
		Action:    action,
		Payload:   payload,
	})
}
