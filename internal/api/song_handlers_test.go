package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

func TestCreateSong_ParsesLyrics(t *testing.T) {
	ts := setupTestServer(t)

	song := ts.createSong(t, "Fancy", testLyrics)

	assert.NotEmpty(t, song.ID)
	assert.Equal(t, "Fancy", song.Title)
	require.Len(t, song.SectionIDs, 2)
	assert.Equal(t, domain.SectionKindVerse, song.Sections[song.SectionIDs[0]].Kind)
	assert.Equal(t, domain.SectionKindChorus, song.Sections[song.SectionIDs[1]].Kind)
	assert.Len(t, song.Lines, 4)
	assert.Len(t, song.Parts, 6)

	first := song.Sections[song.SectionIDs[0]].LinesIDs[0]
	parts := song.Lines[first].PartsIDs
	require.Len(t, parts, 2)
	assert.Equal(t, "Hello", song.Parts[parts[0]].Text)
	assert.Equal(t, "world", song.Parts[parts[1]].Text)
}

func TestCreateSong_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{name: "missing title", body: map[string]any{"artist": "TWICE"}, status: http.StatusUnprocessableEntity},
		{name: "blank title", body: map[string]any{"title": "   "}, status: http.StatusBadRequest},
		{name: "inverted window", body: map[string]any{"title": "x", "startAt": 5000, "endAt": 1000}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			w := ts.do(t, http.MethodPost, "/api/v1/songs", tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "VALIDATION", decodeError(t, w).Code)
		})
	}
}

func TestGetSong_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/songs/song-missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeError(t, w)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Contains(t, env.Message, "song-missing")
}

func TestListSongs(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSong(t, "Fancy", testLyrics)
	ts.createSong(t, "Feel Special", testLyrics)
	ts.createSong(t, "Cheer Up", "")

	page := decodeData[ListSongsResponse](t, ts.do(t, http.MethodGet, "/api/v1/songs?limit=2", nil))
	assert.Len(t, page.Songs, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	rest := decodeData[ListSongsResponse](t, ts.do(t, http.MethodGet, "/api/v1/songs?limit=2&cursor="+url.QueryEscape(page.NextCursor), nil))
	assert.Len(t, rest.Songs, 1)
	assert.False(t, rest.HasMore)

	byArtist := decodeData[ListSongsResponse](t, ts.do(t, http.MethodGet, "/api/v1/songs?artist=twice", nil))
	assert.Len(t, byArtist.Songs, 3)
}

func TestUpdateSong(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	w := ts.do(t, http.MethodPatch, "/api/v1/songs/"+song.ID, map[string]any{
		"title":   "FANCY",
		"videoId": "kOHB85vDuow",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[SongResponse](t, w)
	assert.Equal(t, "FANCY", updated.Title)
	assert.Equal(t, "kOHB85vDuow", updated.VideoID)
	assert.Equal(t, "TWICE", updated.Artist)
	assert.True(t, updated.UpdatedAt.After(song.UpdatedAt))
}

func TestDeleteSong(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	w := ts.do(t, http.MethodDelete, "/api/v1/songs/"+song.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/songs/"+song.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSongSummaryAndValidation(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	summary := decodeData[domain.SongSummary](t, ts.do(t, http.MethodGet, "/api/v1/songs/"+song.ID+"/summary", nil))
	assert.Equal(t, 2, summary.Sections)
	assert.Equal(t, 4, summary.Lines)
	assert.Equal(t, 6, summary.Parts)

	report := decodeData[ValidationReport](t, ts.do(t, http.MethodGet, "/api/v1/songs/"+song.ID+"/validation", nil))
	assert.True(t, report.Valid)
	assert.Empty(t, report.Violations)
}
