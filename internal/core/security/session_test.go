package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/apperror"
)

func TestSession_RolePermissions(t *testing.T) {
	tech := NewSession("u1", "Ana", RoleTechnician)
	assert.True(t, tech.Can(PermStockConsume))
	assert.True(t, tech.Can(PermWorktimeWrite))
	assert.False(t, tech.Can(PermStockWrite))
	assert.False(t, tech.Can(PermCostRead))

	viewer := NewSession("u2", "Bo", RoleViewer)
	err := viewer.Require(PermStockConsume)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	var none *Session
	assert.False(t, none.Can(PermStockRead))
	assert.True(t, apperror.HasCode(none.Require(PermStockRead), apperror.CodeUnauthorized))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestSession_Context(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", ActorID(ctx))

	ctx = WithSession(ctx, NewSession("u9", "Cy", RoleAdmin))
	assert.Equal(t, "u9", ActorID(ctx))
	assert.Equal(t, RoleAdmin, FromContext(ctx).Role)
}
