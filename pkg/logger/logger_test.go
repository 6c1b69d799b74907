package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "maintledger/internal/core/context"
	"maintledger/internal/core/security"
)

func TestFromContext_TagsRequestAndActor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), Wrap(zap.New(core)))
	ctx = appctx.WithRequest(ctx, appctx.RequestInfo{RequestID: "req-1", TraceID: "tr-1"})
	ctx = security.WithSession(ctx, security.NewSession("u7", "Ana", security.RoleTechnician))

	Warn(ctx, "stock low", "material_id", "m1")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "stock low", entry.Message)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "u7", fields["actor_id"])
	assert.Equal(t, "m1", fields["material_id"])
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Wrap(zap.New(core)).WithComponent("writer").Infow("flushed")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "writer", logs.All()[0].ContextMap()["component"])
}
