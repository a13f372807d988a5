package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/distribution"
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

var testRoster = []map[string]any{
	{"id": "nayeon", "name": "Nayeon", "color": "#8ecae6"},
	{"id": "jihyo", "name": "Jihyo"},
}

func (ts *testServer) createDistribution(t *testing.T, songID string) DistributionResponse {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/v1/distributions", map[string]any{
		"songId":    songID,
		"name":      "Main",
		"assignees": testRoster,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[DistributionResponse](t, w)
}

func (ts *testServer) assign(t *testing.T, distID string, parts []domain.PartID, assignees ...string) DistributionResponse {
	t.Helper()

	ids := make([]string, len(parts))
	for i, p := range parts {
		ids[i] = string(p)
	}
	w := ts.do(t, http.MethodPost, "/api/v1/distributions/"+distID+"/assign", map[string]any{
		"partIds":     ids,
		"assigneeIds": assignees,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[DistributionResponse](t, w)
}

func TestCreateDistribution(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	dist := ts.createDistribution(t, song.ID)

	assert.Equal(t, song.ID, dist.SongID)
	assert.Equal(t, "Main", dist.Name)
	require.Len(t, dist.Assignees, 2)
	assert.Equal(t, "jihyo", dist.Assignees[0].ID)
	assert.Equal(t, "nayeon", dist.Assignees[1].ID)
	assert.Empty(t, dist.Mapping)

	list := decodeData[ListDistributionsResponse](t, ts.do(t, http.MethodGet, "/api/v1/songs/"+song.ID+"/distributions", nil))
	require.Len(t, list.Distributions, 1)
	assert.Equal(t, dist.ID, list.Distributions[0].ID)
}

func TestCreateDistribution_Errors(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)

	t.Run("unknown song", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/distributions", map[string]any{"songId": "song-missing"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("sentinel performer", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/distributions", map[string]any{
			"songId":    song.ID,
			"assignees": []map[string]any{{"id": "ALL", "name": "Everyone"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate performer", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/distributions", map[string]any{
			"songId":    song.ID,
			"assignees": []map[string]any{{"id": "momo", "name": "Momo"}, {"id": "momo", "name": "Momo"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAssign(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	dist := ts.createDistribution(t, song.ID)
	parts := firstLineParts(song)

	dist = ts.assign(t, dist.ID, parts[:1], "nayeon")
	dist = ts.assign(t, dist.ID, parts[1:2], "ALL")
	assert.Equal(t, []string{"nayeon"}, dist.Mapping[parts[0]])
	assert.Equal(t, []string{"ALL"}, dist.Mapping[parts[1]])

	dist = ts.assign(t, dist.ID, parts[:1])
	assert.NotContains(t, dist.Mapping, parts[0])

	t.Run("not in roster", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/distributions/"+dist.ID+"/assign", map[string]any{
			"partIds":     []string{string(parts[0])},
			"assigneeIds": []string{"momo"},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unassigned is not a target", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/distributions/"+dist.ID+"/assign", map[string]any{
			"partIds":     []string{string(parts[0])},
			"assigneeIds": []string{"UNASSIGNED"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSetAssignees_PrunesMapping(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	dist := ts.createDistribution(t, song.ID)
	parts := firstLineParts(song)
	ts.assign(t, dist.ID, parts[:1], "nayeon", "jihyo")
	ts.assign(t, dist.ID, parts[1:2], "nayeon")

	w := ts.do(t, http.MethodPut, "/api/v1/distributions/"+dist.ID+"/assignees", map[string]any{
		"assignees": []map[string]any{{"id": "jihyo", "name": "Jihyo"}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[DistributionResponse](t, w)
	assert.Equal(t, []string{"jihyo"}, updated.Mapping[parts[0]])
	assert.NotContains(t, updated.Mapping, parts[1])
}

func TestApplySuggestions(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	dist := ts.createDistribution(t, song.ID)
	parts := firstLineParts(song)
	ts.editSong(t, http.MethodPatch, "/api/v1/songs/"+song.ID+"/content", map[string]any{
		"updates": map[string]any{
			string(parts[0]) + ".recommendedAssignee": "jihyo",
			string(parts[1]) + ".recommendedAssignee": "momo",
		},
	})

	w := ts.do(t, http.MethodPost, "/api/v1/distributions/"+dist.ID+"/suggestions", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeData[SuggestionsResponse](t, w)
	assert.Equal(t, 1, out.Applied)
	assert.Equal(t, []string{"jihyo"}, out.Distribution.Mapping[parts[0]])
	assert.NotContains(t, out.Distribution.Mapping, parts[1])
}

func TestProgressAndCompleteness(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	dist := ts.createDistribution(t, song.ID)
	parts := firstLineParts(song)
	ts.timePart(t, song.ID, parts[0], 0, 1000)
	ts.timePart(t, song.ID, parts[1], 1000, 4000)
	ts.assign(t, dist.ID, parts[:1], "nayeon")
	ts.assign(t, dist.ID, parts[1:2], "jihyo")

	progress := decodeData[distribution.Progress](t, ts.do(t, http.MethodGet, "/api/v1/distributions/"+dist.ID+"/progress", nil))
	durations := make(map[string]int64)
	for _, p := range progress.Assignees {
		durations[p.AssigneeID] = p.Duration
	}
	assert.Equal(t, int64(1000), durations["nayeon"])
	assert.Equal(t, int64(3000), durations["jihyo"])

	preview := decodeData[distribution.Progress](t, ts.do(t, http.MethodPost, "/api/v1/distributions/"+dist.ID+"/progress/preview", map[string]any{
		"mapping": map[string][]string{string(parts[0]): {"jihyo"}, string(parts[1]): {"jihyo"}},
	}))
	for _, p := range preview.Assignees {
		if p.AssigneeID == "jihyo" {
			assert.Equal(t, int64(4000), p.Duration)
		}
	}

	completeness := decodeData[distribution.Completeness](t, ts.do(t, http.MethodGet, "/api/v1/distributions/"+dist.ID+"/completeness", nil))
	assert.Equal(t, 6, completeness.TotalParts)
	assert.Equal(t, 2, completeness.AssignedParts)
	assert.Len(t, completeness.UnassignedParts, 4)
}

func TestSnapshots(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	dist := ts.createDistribution(t, song.ID)
	parts := firstLineParts(song)
	ts.timePart(t, song.ID, parts[0], 0, 1000)
	ts.assign(t, dist.ID, parts[:1], "nayeon")

	w := ts.do(t, http.MethodGet, "/api/v1/distributions/"+dist.ID+"/snapshots", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeData[distribution.Result](t, w)
	assert.NotEmpty(t, result.Bars)
	assert.NotEmpty(t, result.Lyrics)
}

func TestDeleteDistribution(t *testing.T) {
	ts := setupTestServer(t)
	song := ts.createSong(t, "Fancy", testLyrics)
	dist := ts.createDistribution(t, song.ID)

	w := ts.do(t, http.MethodDelete, "/api/v1/distributions/"+dist.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/distributions/"+dist.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
