package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/songedit"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

func TestSongService_CreateSongParsesLyrics(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{
		Title:  "  First  ",
		Artist: "Group",
		Lyrics: testLyrics,
	})
	require.NoError(t, err)

	assert.Equal(t, "First", song.Title)
	require.Len(t, song.SectionIDs, 2)
	assert.Equal(t, domain.SectionKindVerse, song.Content.Sections[song.SectionIDs[0]].Kind)
	assert.Equal(t, domain.SectionKindChorus, song.Content.Sections[song.SectionIDs[1]].Kind)
	assert.Len(t, song.Content.Lines, 3)
	assert.Len(t, song.Content.Parts, 4)
	assert.Empty(t, domain.Validate(song))

	stored, err := svc.songs.GetSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, song.SectionIDs, stored.SectionIDs)
}

func TestSongService_CreateSongValidation(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateSongInput
	}{
		{"blank title", CreateSongInput{Title: "   "}},
		{"negative start", CreateSongInput{Title: "x", StartAt: -1}},
		{"end before start", CreateSongInput{Title: "x", StartAt: 5000, EndAt: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.songs.CreateSong(ctx, tt.in)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestSongService_EditPersists(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Song", Lyrics: testLyrics})
	require.NoError(t, err)

	var added domain.SectionID
	edited, err := svc.songs.Edit(ctx, song.ID, "add_section", func(tx *songedit.Tx) error {
		var err error
		added, err = tx.AddSection(domain.SectionKindBridge, songedit.Append)
		return err
	})
	require.NoError(t, err)
	assert.True(t, edited.UpdatedAt.After(song.UpdatedAt))

	stored, err := svc.songs.GetSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.SectionIDs, added)
	assert.Len(t, stored.SectionIDs, 3)
}

func TestSongService_FailedEditLeavesSongUnchanged(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Song", Lyrics: testLyrics})
	require.NoError(t, err)
	sectionID := song.SectionIDs[0]

	_, err = svc.songs.Edit(ctx, song.ID, "delete_section", func(tx *songedit.Tx) error {
		return tx.DeleteSection(sectionID)
	})
	assert.ErrorIs(t, err, domainerrors.ErrPrecondition)

	stored, err := svc.songs.GetSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, song.SectionIDs, stored.SectionIDs)
	assert.True(t, stored.UpdatedAt.Equal(song.UpdatedAt))
}

func TestSongService_EditRejectsInconsistentResult(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Song", Lyrics: testLyrics})
	require.NoError(t, err)

	_, err = svc.songs.Edit(ctx, song.ID, "corrupt", func(tx *songedit.Tx) error {
		tx.Song().SectionIDs = append(tx.Song().SectionIDs, "_smissing")
		return nil
	})
	require.ErrorIs(t, err, domainerrors.ErrInternal)

	violations, err := svc.songs.Validate(ctx, song.ID)
	require.NoError(t, err)
	assert.Empty(t, violations, "the broken song must not be stored")
}

func TestSongService_EditUnknownSong(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := svc.songs.Edit(context.Background(), "song-missing", "noop", func(*songedit.Tx) error { return nil })
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSongService_UpdateMetadata(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Song", Artist: "Old"})
	require.NoError(t, err)

	artist, video := "New Artist", "abc123"
	updated, err := svc.songs.UpdateMetadata(ctx, song.ID, SongMetadata{Artist: &artist, VideoID: &video})
	require.NoError(t, err)
	assert.Equal(t, "New Artist", updated.Artist)
	assert.Equal(t, "Song", updated.Title)

	byArtist, err := svc.songs.ListSongsByArtist(ctx, "new artist")
	require.NoError(t, err)
	require.Len(t, byArtist, 1)
	assert.Equal(t, "abc123", byArtist[0].VideoID)

	blank := " "
	_, err = svc.songs.UpdateMetadata(ctx, song.ID, SongMetadata{Title: &blank})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSongService_DeleteSong(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	song, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Song"})
	require.NoError(t, err)

	require.NoError(t, svc.songs.DeleteSong(ctx, song.ID))
	_, err = svc.songs.GetSong(ctx, song.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSongService_ListSongsPages(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	for range 3 {
		_, err := svc.songs.CreateSong(ctx, CreateSongInput{Title: "Song"})
		require.NoError(t, err)
	}

	page, err := svc.songs.ListSongs(ctx, store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	page, err = svc.songs.ListSongs(ctx, store.PaginationParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	_, err = svc.songs.ListSongs(ctx, store.PaginationParams{Cursor: "!!not-base64"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
