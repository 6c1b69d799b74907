package postgres

import (
	"encoding/json"
	"time"
)

// RecordRow is the storage shape shared by every record table: an opaque
// JSONB document keyed by the record id.
type RecordRow struct {
	ID        string          `db:"id"`
	Data      json.RawMessage `db:"data"`
	UpdatedAt time.Time       `db:"updated_at"`
}
