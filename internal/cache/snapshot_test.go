package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

func setupCache(t *testing.T) (*SnapshotCache, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewSnapshotCache(rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cleanup := func() {
		_ = rdb.Close()
		mr.Close()
	}
	return c, mr, cleanup
}

func fixture() (*domain.Song, *domain.Distribution) {
	song := domain.NewSong("song-1", "Cached")
	song.EndAt = 2000
	song.SectionIDs = []domain.SectionID{"_s1"}
	song.Content.Sections["_s1"] = &domain.Section{ID: "_s1", Kind: domain.SectionKindVerse, LinesIDs: []domain.LineID{"_l1"}}
	song.Content.Lines["_l1"] = &domain.Line{ID: "_l1", SectionID: "_s1", PartsIDs: []domain.PartID{"_p1"}}
	song.Content.Parts["_p1"] = &domain.Part{ID: "_p1", LineID: "_l1", Text: "hi", StartTime: 0, EndTime: 1000}

	dist := domain.NewDistribution("dist-1", song.ID, "")
	dist.Assignees["a"] = domain.Assignee{ID: "a", Name: "Ann"}
	dist.Mapping["_p1"] = []string{"a"}
	return song, dist
}

func TestFingerprint_ChangesWithEitherInput(t *testing.T) {
	song, dist := fixture()
	base := Fingerprint(song, dist)
	assert.Equal(t, base, Fingerprint(song, dist))

	song2 := song.Clone()
	song2.UpdatedAt = song.UpdatedAt.Add(time.Millisecond)
	assert.NotEqual(t, base, Fingerprint(song2, dist))

	dist2 := *dist
	dist2.UpdatedAt = dist.UpdatedAt.Add(time.Millisecond)
	assert.NotEqual(t, base, Fingerprint(song, &dist2))
}

func TestSnapshots_MissThenHit(t *testing.T) {
	c, mr, cleanup := setupCache(t)
	defer cleanup()
	ctx := context.Background()
	song, dist := fixture()

	_, ok, err := c.Get(ctx, song, dist)
	require.NoError(t, err)
	assert.False(t, ok)

	computed, err := c.Snapshots(ctx, song, dist)
	require.NoError(t, err)
	require.Len(t, computed.Bars, 20)

	cached, ok, err := c.Get(ctx, song, dist)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, computed.Bars[19].Bars["a"].FullDuration, cached.Bars[19].Bars["a"].FullDuration)

	key := key(dist.ID, Fingerprint(song, dist))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestSnapshots_ChangedInputMisses(t *testing.T) {
	c, _, cleanup := setupCache(t)
	defer cleanup()
	ctx := context.Background()
	song, dist := fixture()

	_, err := c.Snapshots(ctx, song, dist)
	require.NoError(t, err)

	song.Content.Parts["_p1"].EndTime = 2000
	song.UpdatedAt = song.UpdatedAt.Add(time.Millisecond)

	_, ok, err := c.Get(ctx, song, dist)
	require.NoError(t, err)
	assert.False(t, ok)

	result, err := c.Snapshots(ctx, song, dist)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.Bars[19].Bars["a"].FullDuration)
}

func TestSnapshots_RedisDownFallsBackToCompute(t *testing.T) {
	c, mr, cleanup := setupCache(t)
	defer cleanup()
	song, dist := fixture()

	mr.Close()
	result, err := c.Snapshots(context.Background(), song, dist)
	require.NoError(t, err)
	assert.Len(t, result.Bars, 20)
}

func TestInvalidate(t *testing.T) {
	c, mr, cleanup := setupCache(t)
	defer cleanup()
	ctx := context.Background()
	song, dist := fixture()

	_, err := c.Snapshots(ctx, song, dist)
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)

	require.NoError(t, c.Invalidate(ctx, dist.ID))
	assert.Empty(t, mr.Keys())
	require.NoError(t, c.Invalidate(ctx, "dist-unknown"))
}

func TestDirect(t *testing.T) {
	song, dist := fixture()
	var s Snapshots = Direct{}
	result, err := s.Snapshots(context.Background(), song, dist)
	require.NoError(t, err)
	assert.Len(t, result.Bars, 20)
	require.NoError(t, s.Invalidate(context.Background(), dist.ID))
}
