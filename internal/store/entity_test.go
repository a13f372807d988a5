package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

type TestEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []any
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	s, _, cleanup := setupRecordingStore(t)
	return s, cleanup
}

func setupRecordingStore(t *testing.T) (*store.Store, *recordingEmitter, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "lyricsplit-store-*")
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil, emitter)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, emitter, cleanup
}

func newTestEntity(s *store.Store) *store.Entity[TestEntity] {
	return store.NewEntity[TestEntity](s, "test:").
		WithIndexTransform("group",
			func(e *TestEntity) []string { return []string{strings.ToLower(e.Group)} },
			strings.ToLower,
		)
}

func TestEntity_CreateGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	want := &TestEntity{ID: "1", Name: "Ann", Group: "Red"}
	require.NoError(t, entity.Create(ctx, "1", want))

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = entity.Create(ctx, "1", want)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = entity.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ok, err := entity.Exists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = entity.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntity_ListByIndex_NonUnique(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Group: "Red"}))
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Group: "red"}))
	require.NoError(t, entity.Create(ctx, "3", &TestEntity{ID: "3", Group: "Blue"}))

	var ids []string
	for e, err := range entity.ListByIndex(ctx, "group", "RED") {
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestEntity_UpdateMovesIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Group: "Red"}))
	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Group: "Blue"}))

	count := func(group string) int {
		n := 0
		for _, err := range entity.ListByIndex(ctx, "group", group) {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 0, count("red"))
	assert.Equal(t, 1, count("blue"))

	err := entity.Update(ctx, "missing", &TestEntity{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_UpdateIf(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Name: "v1"}))

	err := entity.UpdateIf(ctx, "1", &TestEntity{ID: "1", Name: "v2"}, func(old *TestEntity) error {
		if old.Name != "v0" {
			return store.ErrStaleWrite
		}
		return nil
	})
	assert.ErrorIs(t, err, store.ErrStaleWrite)

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Name)
}

func TestEntity_DeleteIsIdempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Group: "red"}))
	require.NoError(t, entity.Delete(ctx, "1"))
	require.NoError(t, entity.Delete(ctx, "1"))

	for range entity.ListByIndex(ctx, "group", "red") {
		t.Fatal("index entry survived delete")
	}
}

func TestEntity_ListSkipsIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	for i := range 5 {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id, Group: "g"}))
	}

	n := 0
	for e, err := range entity.List(ctx) {
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
		n++
	}
	assert.Equal(t, 5, n)
}

func TestEntity_Page(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	entity := newTestEntity(s)

	for i := range 7 {
		id := fmt.Sprintf("e%02d", i)
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id, Group: "g"}))
	}

	var seen []string
	params := store.PaginationParams{Limit: 3}
	for page := 0; ; page++ {
		require.Less(t, page, 5, "pagination does not terminate")
		result, err := entity.Page(ctx, params)
		require.NoError(t, err)
		for _, e := range result.Items {
			seen = append(seen, e.ID)
		}
		if !result.HasMore {
			break
		}
		params.Cursor = result.NextCursor
	}

	assert.Equal(t, []string{"e00", "e01", "e02", "e03", "e04", "e05", "e06"}, seen)

	_, err := entity.Page(ctx, store.PaginationParams{Cursor: "%%%"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}
