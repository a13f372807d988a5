package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/songedit"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

const testLyrics = `[VERSE]
Hello | World
Second line

[CHORUS]
Sing it loud`

type testServices struct {
	songs         *SongService
	distributions *DistributionService
	formations    *FormationService
	store         *store.Store
}

// setupTestServices wires every service to one temp database.
func setupTestServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "lyricsplit-service-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testStore, err := store.New(filepath.Join(tmpDir, "test.db"), logger, nil)
	require.NoError(t, err)

	svc := &testServices{
		songs:         NewSongService(testStore, logger),
		distributions: NewDistributionService(testStore, nil, logger),
		formations:    NewFormationService(testStore, logger),
		store:         testStore,
	}

	cleanup := func() {
		_ = testStore.Close()    //nolint:errcheck // Test cleanup
		_ = os.RemoveAll(tmpDir) //nolint:errcheck // Test cleanup
	}
	return svc, cleanup
}

// orderedParts returns the song's parts in reading order.
func orderedParts(song *domain.Song) []*domain.Part {
	var out []*domain.Part
	for _, secID := range song.SectionIDs {
		for _, lineID := range song.Content.Sections[secID].LinesIDs {
			for _, partID := range song.Content.Lines[lineID].PartsIDs {
				out = append(out, song.Content.Parts[partID])
			}
		}
	}
	return out
}

// createTimedSong stores testLyrics with every part one second long,
// back to back from 0.
func createTimedSong(t *testing.T, ctx context.Context, svc *testServices) *domain.Song {
	t.Helper()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Timed", Artist: "Group", Lyrics: testLyrics})
	require.NoError(t, err)

	song, err = svc.songs.Edit(ctx, song.ID, "timing", func(tx *songedit.Tx) error {
		for i, part := range orderedParts(tx.Song()) {
			start, end := int64(i*1000), int64((i+1)*1000)
			if err := tx.UpdatePart(part.ID, songedit.PartUpdate{StartTime: &start, EndTime: &end}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return song
}
