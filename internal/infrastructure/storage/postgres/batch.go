package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var errCopyOutsideTx = errors.New("copy requires a transaction in context")

// BatchInserter loads rows with COPY. Seeding a fresh store uses it instead
// of one upsert per record.
type BatchInserter struct {
	txm *TxManager
}

func NewBatchInserter(txm *TxManager) *BatchInserter {
	return &BatchInserter{txm: txm}
}

// CopyFromSlice copies rows into table within the transaction carried by ctx.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txm.GetTx(ctx)
	if tx == nil {
		return 0, errCopyOutsideTx
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}
