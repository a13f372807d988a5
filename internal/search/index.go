package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// SongIndex wraps a Bleve index of songs.
//
// All public methods are safe for concurrent use. The mutex protects against
// index replacement during Rebuild.
type SongIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup rebuilds the index.
const mappingVersion = "1"

// NewSongIndex creates or opens a search index under opts.DataPath.
// A corrupted index or one built with another mapping version is removed and
// recreated empty; callers repopulate it with Store.ReindexSongs.
func NewSongIndex(opts Options) (*SongIndex, bool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "songs.bleve")
	versionPath := filepath.Join(opts.DataPath, "songs.version")

	var (
		index   bleve.Index
		err     error
		rebuild bool
	)

	_, statErr := os.Stat(indexPath)
	exists := statErr == nil

	if exists {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			rebuild = true
		case string(version) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
			rebuild = true
		}
	}

	if exists && !rebuild {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			rebuild = true
		}
	}

	if rebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, false, fmt.Errorf("remove old index: %w", err)
		}
		index = nil
	}

	created := index == nil
	if created {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, false, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SongIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, created, nil
}

// Close closes the index and releases resources.
func (s *SongIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexSong adds or replaces a song. It implements store.SearchIndexer.
func (s *SongIndex) IndexSong(_ context.Context, song *domain.Song) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := SongToDocument(song)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexSongs indexes songs in batches of 500.
func (s *SongIndex) IndexSongs(_ context.Context, songs []*domain.Song) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500
	for i := 0; i < len(songs); i += batchSize {
		end := min(i+batchSize, len(songs))

		batch := s.index.NewBatch()
		for _, song := range songs[i:end] {
			doc := SongToDocument(song)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteSong removes a song. It implements store.SearchIndexer.
func (s *SongIndex) DeleteSong(_ context.Context, songID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(songID)
}

// DocumentCount returns the total number of indexed songs.
func (s *SongIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and creates an empty one with the current mapping.
// It blocks every other operation while it runs.
func (s *SongIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
