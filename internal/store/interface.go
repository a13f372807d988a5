package store

import (
	"context"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// EventEmitter receives change events after every successful write.
// Store uses this to broadcast changes without depending on the transport.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter { return NoopEmitter{} }

// SearchIndexer keeps the song search index in sync with stored songs.
// Indexing failures are logged and never fail the write.
type SearchIndexer interface {
	IndexSong(ctx context.Context, song *domain.Song) error
	DeleteSong(ctx context.Context, songID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexSong(context.Context, *domain.Song) error { return nil }
func (NoopSearchIndexer) DeleteSong(context.Context, string) error      { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
