package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/cache"
	"github.com/lyricsplit/lyricsplit-server/internal/http/response"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
	"github.com/lyricsplit/lyricsplit-server/internal/search"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// testServer wraps the API server with its backing store.
type testServer struct {
	*Server
	store *store.Store
}

// setupTestServer creates a server over a fresh store and search index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	log := logger.Discard().Logger

	st, err := store.New(filepath.Join(tmpDir, "db"), log, store.NewNoopEmitter())
	require.NoError(t, err)

	index, _, err := search.NewSongIndex(search.Options{DataPath: filepath.Join(tmpDir, "search"), Logger: log})
	require.NoError(t, err)
	st.SetSearchIndexer(index)

	t.Cleanup(func() {
		_ = index.Close() //nolint:errcheck // Test cleanup
		_ = st.Close()    //nolint:errcheck // Test cleanup
	})

	services := &Services{
		Song:         service.NewSongService(st, log),
		Distribution: service.NewDistributionService(st, cache.Direct{}, log),
		Formation:    service.NewFormationService(st, log),
		Search:       service.NewSearchService(index, st, log),
	}

	return &testServer{
		Server: NewServer(st, services, opts, log),
		store:  st,
	}
}

// do sends a request through the full router. A non-nil body is sent as JSON.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

// dataEnvelope is a success envelope with typed data.
type dataEnvelope[T any] struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// decodeData asserts a success envelope and returns its data.
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var env dataEnvelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(t, response.Version, env.Version)
	assert.True(t, env.Success, w.Body.String())
	return env.Data
}

// decodeError asserts an error envelope and returns it.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()

	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(t, response.Version, env.Version)
	assert.False(t, env.Success)
	return env
}

// createSong creates a song through the API and returns it.
func (ts *testServer) createSong(t *testing.T, title, lyrics string) SongResponse {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/v1/songs", map[string]any{
		"title":  title,
		"artist": "TWICE",
		"lyrics": lyrics,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[SongResponse](t, w)
}

const testLyrics = `[VERSE]
Hello | world
Second line

[CHORUS]
Sing it | loud
(oh yeah)`

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeError(t, w)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/songs", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/openapi.json", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "LyricSplit API")
	assert.Contains(t, w.Body.String(), "/api/v1/songs/{id}/parts/merge")
}
