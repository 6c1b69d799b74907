package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, 500*time.Millisecond, c.Writer.CoalesceWindow)
	assert.Equal(t, 10*time.Second, c.Writer.WriteTimeout)
	assert.Equal(t, 5*time.Minute, c.Worker.VerifyInterval)
	assert.Empty(t, c.Postgres.DSN)
	assert.True(t, c.Development())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
writer:
  coalesce_window: 2s
postgres:
  dsn: postgres://file
`), 0o600))

	t.Setenv("MAINT_POSTGRES_DSN", "postgres://env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTP.Addr)
	assert.Equal(t, 2*time.Second, c.Writer.CoalesceWindow)
	assert.Equal(t, "postgres://env", c.Postgres.DSN)
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("MAINT_APP_ENV", "production")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")

	t.Setenv("MAINT_AUTH_JWT_SECRET", "s3cret")
	_, err = Load("")
	assert.NoError(t, err)
}
