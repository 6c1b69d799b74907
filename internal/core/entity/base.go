// Package entity provides core domain entities.
package entity

import (
	"context"
	"strings"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without storage access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Record is anything persisted by id in a record table.
type Record interface {
	GetID() string
}

// NormalizeName trims a location or catalog name.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}
