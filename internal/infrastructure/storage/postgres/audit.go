// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"maintledger/internal/core/id"
	"maintledger/internal/core/security"
)

// AuditAction represents the type of audited write.
type AuditAction string

const (
	AuditActionUpsert AuditAction = "upsert"
	AuditActionDelete AuditAction = "delete"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const auditTable = "record_audit"

// AuditEntry is one row of the record audit trail.
type AuditEntry struct {
	ID                string          `db:"id"`
	TableName         string          `db:"table_name"`
	RecordID          string          `db:"record_id"`
	Action            AuditAction     `db:"action"`
	ActorID           string          `db:"actor_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService writes the audit trail alongside record writes.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 8 * 1024,
	}, nil
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// prepare fills defaults and compresses large payloads.
func (s *AuditService) prepare(ctx context.Context, entry AuditEntry) AuditEntry {
	if entry.ID == "" {
		entry.ID = id.New()
	}
	if entry.ActorID == "" {
		entry.ActorID = security.ActorID(ctx)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.CompressionAlgo = CompressionNone
	if len(entry.Payload) > s.compressThreshold {
		entry.PayloadCompressed = s.encoder.EncodeAll(entry.Payload, nil)
		entry.Payload = nil
		entry.CompressionAlgo = CompressionZstd
	}
	return entry
}

// Log records an audit entry in the transaction carried by ctx, if any.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	entry = s.prepare(ctx, entry)

	sql, args, err := builder().
		Insert(auditTable).
		SetMap(StructToMap(entry)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// History returns the most recent audit entries for a record, newest first.
func (s *AuditService) History(ctx context.Context, table, recordID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	sql, args, err := builder().
		Select(ExtractDBColumns[AuditEntry]()...).
		From(auditTable).
		Where(squirrel.Eq{"table_name": table, "record_id": recordID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	var entries []AuditEntry
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		if e.CompressionAlgo != CompressionZstd || len(e.PayloadCompressed) == 0 {
			continue
		}
		raw, err := s.decoder.DecodeAll(e.PayloadCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
		e.Payload = raw
		e.PayloadCompressed = nil
	}
	return entries, nil
}
