package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// firstLineParts returns the parts of the first line of the first section.
func firstLineParts(song SongResponse) []domain.PartID {
	lineID := song.Sections[song.SectionIDs[0]].LinesIDs[0]
	return song.Lines[lineID].PartsIDs
}

func (ts *testServer) editSong(t *testing.T, method, path string, body any) EditResponse {
	t.Helper()

	w := ts.do(t, method, path, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[EditResponse](t, w)
}

func (ts *testServer) timePart(t *testing.T, songID string, partID domain.PartID, start, end int64) {
	t.Helper()
	ts.editSong(t, http.MethodPatch, "/api/v1/songs/"+songID+"/parts/"+string(partID), map[string]any{
		"startTime": start,
		"endTime":   end,
	})
}

func TestAddSection_Renumbers(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	out := ts.editSong(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/sections", map[string]any{"kind": "CHORUS"})

	require.Len(t, out.Created, 1)
	require.Len(t, out.Song.SectionIDs, 3)
	assert.Equal(t, domain.SectionID(out.Created[0]), out.Song.SectionIDs[2])

	var numbers []string
	for _, id := range out.Song.SectionIDs {
		numbers = append(numbers, out.Song.Sections[id].Number)
	}
	assert.Equal(t, []string{"", "I.A", "I.B"}, numbers)

	added := out.Song.Sections[domain.SectionID(out.Created[0])]
	assert.Len(t, added.LinesIDs, 1)
}

func TestAddSection_RejectsUnknownKind(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	w := ts.do(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/sections", map[string]any{"kind": "KAZOO"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", decodeError(t, w).Code)
}

func TestAppendLineText(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	lineID := song.Sections[song.SectionIDs[0]].LinesIDs[1]

	out := ts.editSong(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/lines/"+string(lineID)+"/text", map[string]any{
		"text": "one | two",
	})

	require.Len(t, out.Created, 2)
	parts := out.Song.Lines[lineID].PartsIDs
	require.Len(t, parts, 3)
	assert.Equal(t, "one", out.Song.Parts[parts[1]].Text)
	assert.Equal(t, "two", out.Song.Parts[parts[2]].Text)
}

func TestMergeParts(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	parts := firstLineParts(song)
	ts.timePart(t, song.ID, parts[0], 0, 1000)
	ts.timePart(t, song.ID, parts[1], 1000, 2500)

	out := ts.editSong(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/parts/merge", map[string]any{
		"ids": []string{string(parts[1]), string(parts[0])},
	})

	merged := firstLineParts(out.Song)
	require.Len(t, merged, 1)
	part := out.Song.Parts[merged[0]]
	assert.Equal(t, parts[0], part.ID)
	assert.Equal(t, "Hello world", part.Text)
	assert.Equal(t, int64(0), part.StartTime)
	assert.Equal(t, int64(2500), part.EndTime)
	assert.NotContains(t, out.Song.Parts, parts[1])
}

func TestMergeParts_NeedsTwo(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	parts := firstLineParts(song)

	w := ts.do(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/parts/merge", map[string]any{
		"ids": []string{string(parts[0])},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSplitPart_DividesTimeByLength(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	lineID := song.Sections[song.SectionIDs[0]].LinesIDs[1]
	partID := song.Lines[lineID].PartsIDs[0]
	ts.timePart(t, song.ID, partID, 1000, 2000)

	out := ts.editSong(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/parts/"+string(partID)+"/split", map[string]any{
		"segments": []string{"Second", "line"},
	})

	require.Len(t, out.Created, 2)
	first := out.Song.Parts[domain.PartID(out.Created[0])]
	second := out.Song.Parts[domain.PartID(out.Created[1])]
	assert.Equal(t, "Second", first.Text)
	assert.Equal(t, int64(1000), first.StartTime)
	assert.Equal(t, int64(1600), first.EndTime)
	assert.Equal(t, int64(1600), second.StartTime)
	assert.Equal(t, int64(2000), second.EndTime)
}

func TestDeleteLine_WithPartsIsPrecondition(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	lineID := song.Sections[song.SectionIDs[0]].LinesIDs[0]

	w := ts.do(t, http.MethodDelete, "/api/v1/songs/"+song.ID+"/lines/"+string(lineID), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PRECONDITION", decodeError(t, w).Code)

	stored := decodeData[SongResponse](t, ts.do(t, http.MethodGet, "/api/v1/songs/"+song.ID, nil))
	assert.Contains(t, stored.Lines, lineID)
}

func TestDeleteSection_Cascade(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	sectionID := song.SectionIDs[0]
	path := "/api/v1/songs/" + song.ID + "/sections/" + string(sectionID)

	w := ts.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	out := ts.editSong(t, http.MethodDelete, path+"?cascade=true", nil)
	assert.Equal(t, []domain.SectionID{song.SectionIDs[1]}, out.Song.SectionIDs)
	assert.Len(t, out.Song.Lines, 2)
	assert.Len(t, out.Song.Parts, 3)
}

func TestNudge(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	parts := firstLineParts(song)
	ts.timePart(t, song.ID, parts[0], 500, 1000)

	t.Run("zero amount", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/nudge", map[string]any{"amount": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("shift", func(t *testing.T) {
		out := ts.editSong(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/nudge", map[string]any{"amount": 250})
		assert.Equal(t, int64(750), out.Song.Parts[parts[0]].StartTime)
		assert.Equal(t, int64(1250), out.Song.Parts[parts[0]].EndTime)
		assert.Equal(t, int64(0), out.Song.Parts[parts[1]].StartTime)
	})

	t.Run("negative timing", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/songs/"+song.ID+"/nudge", map[string]any{"amount": -5000})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBatchUpdate(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	parts := firstLineParts(song)
	sectionID := song.SectionIDs[1]

	out := ts.editSong(t, http.MethodPatch, "/api/v1/songs/"+song.ID+"/content", map[string]any{
		"updates": map[string]any{
			string(parts[0]) + ".text":                "Hi",
			string(parts[1]) + ".recommendedAssignee": "ALL",
			string(sectionID) + ".kind":               "HOOK",
		},
	})

	assert.Equal(t, "Hi", out.Song.Parts[parts[0]].Text)
	assert.Equal(t, "ALL", out.Song.Parts[parts[1]].RecommendedAssignee)
	assert.Equal(t, domain.SectionKindHook, out.Song.Sections[sectionID].Kind)
}

func TestBatchUpdate_RejectsUnknownPathsAtomically(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	parts := firstLineParts(song)

	w := ts.do(t, http.MethodPatch, "/api/v1/songs/"+song.ID+"/content", map[string]any{
		"updates": map[string]any{
			string(parts[0]) + ".text": "Hi",
			"_missing.text":            "nope",
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	stored := decodeData[SongResponse](t, ts.do(t, http.MethodGet, "/api/v1/songs/"+song.ID, nil))
	assert.Equal(t, "Hello", stored.Parts[parts[0]].Text)
}

func TestUpdateLine_Skill(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	lineID := song.Sections[song.SectionIDs[0]].LinesIDs[0]
	path := "/api/v1/songs/" + song.ID + "/lines/" + string(lineID)

	out := ts.editSong(t, http.MethodPatch, path, map[string]any{
		"skill": map[string]any{"type": "RAP", "level": 2},
		"adlib": true,
	})
	require.NotNil(t, out.Song.Lines[lineID].Skill)
	assert.Equal(t, domain.SkillRap, out.Song.Lines[lineID].Skill.Type)
	assert.True(t, out.Song.Lines[lineID].Adlib)

	out = ts.editSong(t, http.MethodPatch, path, map[string]any{"clearSkill": true})
	assert.Nil(t, out.Song.Lines[lineID].Skill)
	assert.True(t, out.Song.Lines[lineID].Adlib)
}

func TestEdit_UnknownSong(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/songs/song-missing/sort", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
