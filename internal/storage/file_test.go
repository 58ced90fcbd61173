package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "links.json"))
	require.NoError(t, err)
	return store
}

func testLink(code string) *models.Link {
	return &models.Link{
		Code:      code,
		LongURL:   "https://example.com",
		ShortURL:  "http://localhost:8080/" + code,
		CreatedAt: time.Now(),
		OwnerID:   models.AnonymousOwner,
	}
}

func TestFileStore_InsertAndFind(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("abc1234")))

	found, err := store.FindByCode(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", found.Code)
	assert.Equal(t, "https://example.com", found.LongURL)
	assert.Equal(t, int64(0), found.Clicks)
	assert.Equal(t, models.AnonymousOwner, found.OwnerID)
}

func TestFileStore_FindMissingCode(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.FindByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrShortCodeNotFound)
}

func TestFileStore_InsertRejectsDuplicate(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("dup")))
	err := store.Insert(ctx, testLink("dup"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCode)

	links, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestFileStore_IncrementClicks(t *testing.T) {
	store := newTestFileStore(t)
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

func TestFileStore_ConcurrentIncrementsLoseNothing(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testLink("hot")))

	const n = 50
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

func TestFileStore_SnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, testLink("persist")))
	require.NoError(t, store.IncrementClicks(ctx, "persist"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	found, err := reopened.FindByCode(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Clicks)

	// No stray temp files from the atomic rewrites.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "leftover temp file %s", entry.Name())
	}
}

func TestFileStore_RecordClickAppends(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	click := &models.Click{
		Code:      "abc1234",
		Timestamp: time.Now(),
		Referrer:  models.DirectReferrer,
		Device:    "desktop",
		UserAgent: "test-agent",
	}
	require.NoError(t, store.RecordClick(ctx, click))
	require.NoError(t, store.RecordClick(ctx, click))

	data, err := os.ReadFile(store.eventsPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"code":"abc1234"`)
}

func TestNewFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
