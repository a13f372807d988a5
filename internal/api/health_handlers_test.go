package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	health := decodeData[HealthResponse](t, w)
	assert.Equal(t, statusHealthy, health.Status)
	assert.Equal(t, statusHealthy, health.Components["database"].Status)
	assert.Equal(t, "0 songs indexed", health.Components["search"].Message)
	assert.Equal(t, "not configured", health.Components["redis"].Message)
}

func TestHealthCheck_CountsIndexedSongs(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSong(t, "Fancy", testLyrics)

	health := decodeData[HealthResponse](t, ts.do(t, http.MethodGet, "/health", nil))

	assert.Equal(t, "1 songs indexed", health.Components["search"].Message)
}

func TestHealthCheck_RedisDownDegrades(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{
		RedisPing: func(context.Context) error { return errors.New("connection refused") },
	})

	health := decodeData[HealthResponse](t, ts.do(t, http.MethodGet, "/health", nil))

	assert.Equal(t, statusDegraded, health.Status)
	assert.Equal(t, statusDegraded, health.Components["redis"].Status)
	assert.Equal(t, statusHealthy, health.Components["database"].Status)
}
