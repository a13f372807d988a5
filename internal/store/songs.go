package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/events"
)

// CreateSong stores a new song, indexes it and emits song.created.
func (s *Store) CreateSong(ctx context.Context, song *domain.Song) error {
	if song.ID == "" {
		return ErrInvalidInput.WithMessage("song id is required")
	}
	if err := s.Songs.Create(ctx, song.ID, song); err != nil {
		return fmt.Errorf("create song %s: %w", song.ID, err)
	}

	s.indexSong(ctx, song)
	s.eventEmitter.Emit(events.NewSongCreatedEvent(song))
	return nil
}

// GetSong retrieves a song by ID.
func (s *Store) GetSong(ctx context.Context, id string) (*domain.Song, error) {
	return s.Songs.Get(ctx, id)
}

// UpdateSong replaces a stored song. When since is non-zero the write is
// rejected with ErrStaleWrite unless the stored song's UpdatedAt equals since.
func (s *Store) UpdateSong(ctx context.Context, song *domain.Song, since time.Time) error {
	check := unchangedSince(since, func(old *domain.Song) time.Time { return old.UpdatedAt })
	if err := s.Songs.UpdateIf(ctx, song.ID, song, check); err != nil {
		return fmt.Errorf("update song %s: %w", song.ID, err)
	}

	s.indexSong(ctx, song)
	s.eventEmitter.Emit(events.NewSongUpdatedEvent(song))
	return nil
}

// DeleteSong removes a song together with its distributions and their formations.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	if _, err := s.Songs.Get(ctx, id); err != nil {
		return err
	}

	dists, err := s.ListDistributionsBySong(ctx, id)
	if err != nil {
		return fmt.Errorf("list distributions of song %s: %w", id, err)
	}
	for _, d := range dists {
		if err := s.DeleteDistribution(ctx, d.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	// Formations whose distribution is already gone.
	forms, err := collect(s.Formations.ListByIndex(ctx, "song_id", id))
	if err != nil {
		return fmt.Errorf("list formations of song %s: %w", id, err)
	}
	for _, f := range forms {
		if err := s.DeleteFormation(ctx, f.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	if err := s.Songs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete song %s: %w", id, err)
	}

	if err := s.searchIndexer.DeleteSong(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove song from search index", "song_id", id, "error", err)
	}
	s.eventEmitter.Emit(events.NewSongDeletedEvent(id))
	return nil
}

// ListSongs returns one page of songs in id order.
func (s *Store) ListSongs(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.Song], error) {
	return s.Songs.Page(ctx, params)
}

// ListSongsByArtist returns the songs of an artist, matched case-insensitively.
func (s *Store) ListSongsByArtist(ctx context.Context, artist string) ([]*domain.Song, error) {
	return collect(s.Songs.ListByIndex(ctx, "artist", artist))
}

// ListSongsByGroup returns the songs tagged with a group id.
func (s *Store) ListSongsByGroup(ctx context.Context, groupID string) ([]*domain.Song, error) {
	return collect(s.Songs.ListByIndex(ctx, "group_id", groupID))
}

// ReindexSongs feeds every stored song to the search indexer.
// Returns the number of songs indexed.
func (s *Store) ReindexSongs(ctx context.Context) (int, error) {
	count := 0
	for song, err := range s.Songs.List(ctx) {
		if err != nil {
			return count, err
		}
		if err := s.searchIndexer.IndexSong(ctx, song); err != nil {
			return count, fmt.Errorf("index song %s: %w", song.ID, err)
		}
		count++
	}
	return count, nil
}

func (s *Store) indexSong(ctx context.Context, song *domain.Song) {
	if err := s.searchIndexer.IndexSong(ctx, song); err != nil && s.logger != nil {
		s.logger.Warn("failed to index song for search", "song_id", song.ID, "error", err)
	}
}
