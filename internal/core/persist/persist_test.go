package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAck_ResolveOnce(t *testing.T) {
	a := NewAck("materials/m1")
	assert.NoError(t, a.Err())

	boom := errors.New("boom")
	a.Resolve(boom)
	a.Resolve(nil)

	assert.ErrorIs(t, a.Wait(context.Background()), boom)
	assert.Equal(t, "materials/m1", a.Key())
}

func TestAck_WaitHonoursContext(t *testing.T) {
	a := NewAck("k")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Wait(ctx), context.DeadlineExceeded)
}

func TestJoin(t *testing.T) {
	a, b := NewAck("a"), NewAck("b")
	j := Join(a, nil, b)

	a.Resolve(nil)
	select {
	case <-j.Done():
		t.Fatal("joined ack resolved early")
	default:
	}

	boom := errors.New("boom")
	b.Resolve(boom)
	require.ErrorIs(t, j.Wait(context.Background()), boom)

	assert.NoError(t, Join().Wait(context.Background()))
}
