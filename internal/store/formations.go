package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/events"
)

// CreateFormation stores a new formation. The distribution must exist.
func (s *Store) CreateFormation(ctx context.Context, f *domain.Formation) error {
	if f.ID == "" {
		return ErrInvalidInput.WithMessage("formation id is required")
	}
	ok, err := s.Distributions.Exists(ctx, f.DistributionID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("distribution %s: %w", f.DistributionID, ErrNotFound)
	}

	if err := s.Formations.Create(ctx, f.ID, f); err != nil {
		return fmt.Errorf("create formation %s: %w", f.ID, err)
	}
	s.eventEmitter.Emit(events.NewFormationCreatedEvent(f))
	return nil
}

// GetFormation retrieves a formation by ID.
func (s *Store) GetFormation(ctx context.Context, id string) (*domain.Formation, error) {
	return s.Formations.Get(ctx, id)
}

// UpdateFormation replaces a stored formation, guarded like UpdateSong.
func (s *Store) UpdateFormation(ctx context.Context, f *domain.Formation, since time.Time) error {
	check := unchangedSince(since, func(old *domain.Formation) time.Time { return old.UpdatedAt })
	if err := s.Formations.UpdateIf(ctx, f.ID, f, check); err != nil {
		return fmt.Errorf("update formation %s: %w", f.ID, err)
	}
	s.eventEmitter.Emit(events.NewFormationUpdatedEvent(f))
	return nil
}

// DeleteFormation removes a formation.
func (s *Store) DeleteFormation(ctx context.Context, id string) error {
	if _, err := s.Formations.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Formations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete formation %s: %w", id, err)
	}
	s.eventEmitter.Emit(events.NewFormationDeletedEvent(id))
	return nil
}

// ListFormationsByDistribution returns every formation of a distribution.
func (s *Store) ListFormationsByDistribution(ctx context.Context, distributionID string) ([]*domain.Formation, error) {
	return collect(s.Formations.ListByIndex(ctx, "distribution_id", distributionID))
}
