package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]string{"id": "song-1"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, float64(Version), env["v"])
	assert.Equal(t, true, env["success"])
	assert.Equal(t, map[string]any{"id": "song-1"}, env["data"])
	assert.NotContains(t, env, "error")
}

func TestJSON_StatusDrivesSuccessFlag(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusBadRequest, nil, nil)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		wantCode int
		wantErr  string
	}{
		{
			name:     "not found",
			write:    func(w http.ResponseWriter) { NotFound(w, "no such route", nil) },
			wantCode: http.StatusNotFound,
			wantErr:  "NOT_FOUND",
		},
		{
			name:     "method not allowed",
			write:    func(w http.ResponseWriter) { MethodNotAllowed(w, "method not allowed", nil) },
			wantCode: http.StatusMethodNotAllowed,
			wantErr:  "NOT_FOUND",
		},
		{
			name:     "too many requests",
			write:    func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) },
			wantCode: http.StatusTooManyRequests,
			wantErr:  "RATE_LIMITED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantCode, w.Code)
			env := decodeError(t, w)
			assert.Equal(t, Version, env.Version)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Code)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "domain precondition",
			err:         domainerrors.Preconditionf("line %s still has parts", "_l1"),
			wantStatus:  http.StatusConflict,
			wantCode:    "PRECONDITION",
			wantMessage: "line _l1 still has parts",
		},
		{
			name:        "wrapped domain not found",
			err:         fmt.Errorf("load: %w", domainerrors.NotFound("song song-1 not found")),
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "song song-1 not found",
		},
		{
			name:        "store stale write",
			err:         store.ErrStaleWrite,
			wantStatus:  http.StatusConflict,
			wantCode:    "CONFLICT",
			wantMessage: store.ErrStaleWrite.Message,
		},
		{
			name:        "unknown error",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discardLogger())

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeError(t, w)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestHandleError_KeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainerrors.ValidationWithDetails("invalid request", map[string]string{"amount": "must not be 0"})
	HandleError(w, err, nil)

	env := decodeError(t, w)
	assert.Equal(t, map[string]any{"amount": "must not be 0"}, env.Details)
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "VALIDATION", CodeForStatus(http.StatusBadRequest))
	assert.Equal(t, "VALIDATION", CodeForStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, "CONFLICT", CodeForStatus(http.StatusConflict))
	assert.Equal(t, "INTERNAL", CodeForStatus(http.StatusTeapot))
}
