package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/security"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken(security.NewSession("tech-1", "Ana", security.RoleTechnician))
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	session, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tech-1", session.ActorID)
	assert.Equal(t, "Ana", session.Name)
	assert.Equal(t, security.RoleTechnician, session.Role)
	assert.True(t, session.Can(security.PermStockConsume))
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	token, _, err := svc.GenerateAccessToken(security.NewSession("u1", "", security.RoleViewer))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTService(DefaultJWTConfig("other")).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTService(DefaultJWTConfig("secret"))
		late.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
