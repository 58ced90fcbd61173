package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewGormStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGormStore_InsertAndFind(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("abc1234")))

	found, err := store.FindByCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", found.Code)
	assert.Equal(t, "https://example.com", found.LongURL)
	assert.Equal(t, int64(0), found.Clicks)
}

func TestGormStore_FindMissingCode(t *testing.T) {
	store := newTestGormStore(t)

	_, err := store.FindByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrShortCodeNotFound)
}

func TestGormStore_InsertRejectsDuplicate(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("dup")))
	err := store.Insert(ctx, testLink("dup"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCode)

	links, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestGormStore_IncrementClicks(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("clicky")))
	require.NoError(t, store.IncrementClicks(ctx, "clicky"))
	require.NoError(t, store.IncrementClicks(ctx, "clicky"))

	found, err := store.FindByCode(ctx, "clicky")
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Clicks)

	err = store.IncrementClicks(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrShortCodeNotFound)
}

func TestGormStore_ConcurrentIncrementsLoseNothing(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("hot")))

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.IncrementClicks(ctx, "hot"))
		}()
	}
	wg.Wait()

	found, err := store.FindByCode(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, int64(n), found.Clicks)
}

func TestGormStore_RecordAndCountClicks(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("abc1234")))

	click := &models.Click{Code: "abc1234", Referrer: models.DirectReferrer, Device: "desktop"}
	require.NoError(t, store.RecordClick(ctx, click))
	require.NoError(t, store.RecordClick(ctx, &models.Click{Code: "abc1234", Referrer: "https://ref.example"}))

	count, err := store.CountClicksByCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.CountClicksByCode(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
