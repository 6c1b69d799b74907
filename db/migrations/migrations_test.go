package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(files, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_record_tables.sql", "00002_record_audit.sql"}, names)

	for _, name := range names {
		body, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}
