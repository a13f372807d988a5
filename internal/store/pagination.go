package store

import (
	"encoding/base64"
	"fmt"
)

const (
	// DefaultPageSize is used when a request does not ask for a page size.
	DefaultPageSize = 50
	// MaxPageSize caps the page size of any listing.
	MaxPageSize = 500
)

// PaginationParams selects one page of a listing.
type PaginationParams struct {
	Limit  int    // Items per page
	Cursor string // Opaque cursor from the previous page (empty for the first page)
}

// PaginatedResult holds one page of documents.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"hasMore"`
}

// Validate clamps the limit into [1, MaxPageSize], defaulting to DefaultPageSize.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

// EncodeCursor creates an opaque cursor from the last key of a page.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to a key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}
	return string(decoded), nil
}
