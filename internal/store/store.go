// Package store persists songs, distributions and formations in Badger.
package store

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

const (
	songPrefix         = "song:"
	distributionPrefix = "dist:"
	formationPrefix    = "form:"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Event emitter for broadcasting changes.
	eventEmitter EventEmitter

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Songs         *Entity[domain.Song]
	Distributions *Entity[domain.Distribution]
	Formations    *Entity[domain.Formation]
}

// New creates a new Store instance with the given database path and event emitter.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if emitter == nil {
		emitter = NoopEmitter{}
	}
	store := &Store{
		db:            db,
		logger:        logger,
		eventEmitter:  emitter,
		searchIndexer: NoopSearchIndexer{},
	}

	store.Songs = NewEntity[domain.Song](store, songPrefix).
		WithIndex("group_id", func(s *domain.Song) []string {
			return []string{s.GroupID}
		}).
		WithIndexTransform("artist",
			func(s *domain.Song) []string {
				return []string{normalizeArtist(s.Artist)}
			},
			normalizeArtist,
		)
	store.Distributions = NewEntity[domain.Distribution](store, distributionPrefix).
		WithIndex("song_id", func(d *domain.Distribution) []string {
			return []string{d.SongID}
		})
	store.Formations = NewEntity[domain.Formation](store, formationPrefix).
		WithIndex("distribution_id", func(f *domain.Formation) []string {
			return []string{f.DistributionID}
		}).
		WithIndex("song_id", func(f *domain.Formation) []string {
			return []string{f.SongID}
		})

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// Ping checks that the database accepts reads.
func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(*badger.Txn) error { return nil })
}

// unchangedSince returns a check for Entity.UpdateIf that rejects the write
// when the stored document was saved after the caller loaded it.
func unchangedSince[T any](since time.Time, updatedAt func(*T) time.Time) func(*T) error {
	return func(old *T) error {
		if since.IsZero() {
			return nil
		}
		if !updatedAt(old).Equal(since) {
			return ErrStaleWrite
		}
		return nil
	}
}

// collect drains an entity iterator into a slice.
func collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	var out []*T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func normalizeArtist(artist string) string {
	return strings.ToLower(strings.TrimSpace(artist))
}
