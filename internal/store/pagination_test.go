package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name          string
		input         PaginationParams
		expectedLimit int
	}{
		{"valid parameters", PaginationParams{Limit: 20}, 20},
		{"zero limit uses default", PaginationParams{Limit: 0}, DefaultPageSize},
		{"negative limit uses default", PaginationParams{Limit: -10}, DefaultPageSize},
		{"limit over max is capped", PaginationParams{Limit: 5000}, MaxPageSize},
		{"limit at max stays", PaginationParams{Limit: MaxPageSize}, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.input
			params.Validate()
			assert.Equal(t, tt.expectedLimit, params.Limit)
		})
	}
}

func TestCursor(t *testing.T) {
	assert.Empty(t, EncodeCursor(""))

	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	for _, key := range []string{"song:song-001", "dist:dist-9f2c", "form:a/b+c"} {
		t.Run(key, func(t *testing.T) {
			cursor := EncodeCursor(key)
			assert.NotContains(t, cursor, "=")
			decoded, err := DecodeCursor(cursor)
			require.NoError(t, err)
			assert.Equal(t, key, decoded)
		})
	}

	_, err = DecodeCursor("not valid base64!!!")
	assert.Error(t, err)
}
