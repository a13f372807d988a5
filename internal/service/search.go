package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/search"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// SearchService bridges the song index with the data store.
type SearchService struct {
	index  *search.SongIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SongIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a song search.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed songs.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from every stored song.
// Call this after a mapping change or when the index is suspected stale.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	count, err := s.store.ReindexSongs(ctx)
	if err != nil {
		return count, fmt.Errorf("reindex songs: %w", err)
	}

	s.logger.Info("search reindex complete",
		"songs", count,
		"duration", time.Since(start),
	)
	return count, nil
}
