package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/events"
)

// CreateDistribution stores a new distribution. The song must exist.
func (s *Store) CreateDistribution(ctx context.Context, d *domain.Distribution) error {
	if d.ID == "" {
		return ErrInvalidInput.WithMessage("distribution id is required")
	}
	ok, err := s.Songs.Exists(ctx, d.SongID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("song %s: %w", d.SongID, ErrNotFound)
	}

	if err := s.Distributions.Create(ctx, d.ID, d); err != nil {
		return fmt.Errorf("create distribution %s: %w", d.ID, err)
	}
	s.eventEmitter.Emit(events.NewDistributionCreatedEvent(d))
	return nil
}

// GetDistribution retrieves a distribution by ID.
func (s *Store) GetDistribution(ctx context.Context, id string) (*domain.Distribution, error) {
	return s.Distributions.Get(ctx, id)
}

// UpdateDistribution replaces a stored distribution, guarded like UpdateSong.
func (s *Store) UpdateDistribution(ctx context.Context, d *domain.Distribution, since time.Time) error {
	check := unchangedSince(since, func(old *domain.Distribution) time.Time { return old.UpdatedAt })
	if err := s.Distributions.UpdateIf(ctx, d.ID, d, check); err != nil {
		return fmt.Errorf("update distribution %s: %w", d.ID, err)
	}
	s.eventEmitter.Emit(events.NewDistributionUpdatedEvent(d))
	return nil
}

// DeleteDistribution removes a distribution and its formations.
func (s *Store) DeleteDistribution(ctx context.Context, id string) error {
	if _, err := s.Distributions.Get(ctx, id); err != nil {
		return err
	}

	forms, err := s.ListFormationsByDistribution(ctx, id)
	if err != nil {
		return fmt.Errorf("list formations of distribution %s: %w", id, err)
	}
	for _, f := range forms {
		if err := s.DeleteFormation(ctx, f.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	if err := s.Distributions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete distribution %s: %w", id, err)
	}
	s.eventEmitter.Emit(events.NewDistributionDeletedEvent(id))
	return nil
}

// ListDistributionsBySong returns every distribution of a song.
func (s *Store) ListDistributionsBySong(ctx context.Context, songID string) ([]*domain.Distribution, error) {
	return collect(s.Distributions.ListByIndex(ctx, "song_id", songID))
}
