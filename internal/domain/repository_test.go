package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/persist"
)

type syncSubmitter struct{ calls int }

func (s *syncSubmitter) Submit(ctx context.Context, table, id string, exec func(context.Context) error) *persist.Ack {
	s.calls++
	return persist.Resolved(table+"/"+id, exec(ctx))
}

type mapTable struct {
	rows    map[string]*entity.Asset
	ids     []string
	failErr error
}

func (t *mapTable) Name() string { return "assets" }

func (t *mapTable) List(_ context.Context, offset, limit int) ([]*entity.Asset, error) {
	var out []*entity.Asset
	for i := offset; i < len(t.ids) && len(out) < limit; i++ {
		out = append(out, t.rows[t.ids[i]])
	}
	return out, nil
}

func (t *mapTable) Upsert(_ context.Context, id string, rec *entity.Asset) error {
	if t.failErr != nil {
		return t.failErr
	}
	if _, ok := t.rows[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.rows[id] = rec
	return nil
}

func (t *mapTable) Delete(_ context.Context, id string) error {
	delete(t.rows, id)
	return nil
}

func TestRepository_HydratePages(t *testing.T) {
	table := &mapTable{rows: map[string]*entity.Asset{}}
	for _, id := range []string{"a1", "a2", "a3", "a4", "a5"} {
		require.NoError(t, table.Upsert(context.Background(), id, &entity.Asset{ID: id}))
	}

	repo := NewRepository[*entity.Asset]("asset", table, &syncSubmitter{})
	n, err := repo.Hydrate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, repo.Len())
	assert.Equal(t, "a1", repo.All(context.Background())[0].ID)
}

func TestRepository_GetReturnsCopy(t *testing.T) {
	repo := NewRepository[*entity.Asset]("asset", &mapTable{rows: map[string]*entity.Asset{}}, &syncSubmitter{})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &entity.Asset{ID: "a1", Code: "PUMP"}).Err())

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	got.Code = "changed"

	again, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "PUMP", again.Code)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, apperror.IsNotFound(err))
}

func TestRepository_FailedWriteKeepsLocalState(t *testing.T) {
	table := &mapTable{rows: map[string]*entity.Asset{}, failErr: errors.New("store down")}
	repo := NewRepository[*entity.Asset]("asset", table, &syncSubmitter{})
	ctx := context.Background()

	ack := repo.Save(ctx, &entity.Asset{ID: "a1"})
	assert.Error(t, ack.Err())
	assert.True(t, repo.Exists("a1"))

	repo.Delete(ctx, "a1")
	assert.False(t, repo.Exists("a1"))
}
