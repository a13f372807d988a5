package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/formation"
	"github.com/lyricsplit/lyricsplit-server/internal/id"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// FormationService edits the stage formations of a distribution.
type FormationService struct {
	store  *store.Store
	logger *slog.Logger

	// One clipboard per formation, kept in memory only.
	clipMu     sync.Mutex
	clipboards map[string]*formation.Clipboard
}

// NewFormationService creates a new formation service.
func NewFormationService(store *store.Store, logger *slog.Logger) *FormationService {
	return &FormationService{
		store:      store,
		logger:     logger,
		clipboards: make(map[string]*formation.Clipboard),
	}
}

// CreateFormation starts a formation for a distribution with every performer
// lined up at timestamp 0.
func (s *FormationService) CreateFormation(ctx context.Context, distributionID string) (*domain.Formation, error) {
	dist, err := s.store.GetDistribution(ctx, distributionID)
	if err != nil {
		return nil, storeError(err, "distribution", distributionID)
	}

	f := domain.NewFormation(id.NewDocumentID("form"), dist.SongID, dist.ID)
	f.Timeline[formation.Key(0)] = formation.DefaultPositions(len(dist.Assignees))

	if err := s.store.CreateFormation(ctx, f); err != nil {
		return nil, storeError(err, "distribution", distributionID)
	}
	s.logger.Info("formation created", "formation_id", f.ID, "distribution_id", distributionID)
	return f, nil
}

// GetFormation returns a formation by ID.
func (s *FormationService) GetFormation(ctx context.Context, formationID string) (*domain.Formation, error) {
	f, err := s.store.GetFormation(ctx, formationID)
	if err != nil {
		return nil, storeError(err, "formation", formationID)
	}
	return f, nil
}

// ListFormationsByDistribution returns every formation of a distribution.
func (s *FormationService) ListFormationsByDistribution(ctx context.Context, distributionID string) ([]*domain.Formation, error) {
	if _, err := s.store.GetDistribution(ctx, distributionID); err != nil {
		return nil, storeError(err, "distribution", distributionID)
	}
	return s.store.ListFormationsByDistribution(ctx, distributionID)
}

// DeleteFormation removes a formation and its clipboard.
func (s *FormationService) DeleteFormation(ctx context.Context, formationID string) error {
	if err := s.store.DeleteFormation(ctx, formationID); err != nil {
		return storeError(err, "formation", formationID)
	}
	s.clipMu.Lock()
	delete(s.clipboards, formationID)
	s.clipMu.Unlock()

	s.logger.Info("formation deleted", "formation_id", formationID)
	return nil
}

// UpdatePosition moves one performer at one timestamp.
func (s *FormationService) UpdatePosition(ctx context.Context, formationID string, ms int64, assigneeID string, pos domain.Position) (*domain.Formation, error) {
	return s.modify(ctx, formationID, "update_position", func(dist *domain.Distribution, tl domain.Timeline) (domain.Timeline, error) {
		index := slices.Index(dist.AssigneeIDs(), assigneeID)
		if index < 0 {
			return nil, domainerrors.Preconditionf("assignee %s is not part of distribution %s", assigneeID, dist.ID)
		}
		return formation.UpdatePosition(tl, ms, index, pos)
	})
}

// Rekey moves the positions at one timestamp to another.
func (s *FormationService) Rekey(ctx context.Context, formationID string, from, to int64) (*domain.Formation, error) {
	return s.modify(ctx, formationID, "rekey", func(_ *domain.Distribution, tl domain.Timeline) (domain.Timeline, error) {
		return formation.Rekey(tl, from, to)
	})
}

// InsertTimestamp adds a timestamp seeded from the closest earlier one.
func (s *FormationService) InsertTimestamp(ctx context.Context, formationID string, ms int64) (*domain.Formation, error) {
	return s.modify(ctx, formationID, "insert_timestamp", func(dist *domain.Distribution, tl domain.Timeline) (domain.Timeline, error) {
		return formation.Insert(tl, ms, len(dist.Assignees))
	})
}

// DeleteTimestamp removes a timestamp.
func (s *FormationService) DeleteTimestamp(ctx context.Context, formationID string, ms int64) (*domain.Formation, error) {
	return s.modify(ctx, formationID, "delete_timestamp", func(_ *domain.Distribution, tl domain.Timeline) (domain.Timeline, error) {
		return formation.Delete(tl, ms)
	})
}

// Copy puts the positions at ms on the formation's clipboard.
func (s *FormationService) Copy(ctx context.Context, formationID string, ms int64) error {
	f, err := s.GetFormation(ctx, formationID)
	if err != nil {
		return err
	}

	s.clipMu.Lock()
	defer s.clipMu.Unlock()
	clip, ok := s.clipboards[formationID]
	if !ok {
		clip = &formation.Clipboard{}
	}
	if err := clip.Copy(f.Timeline, ms); err != nil {
		return err
	}
	s.clipboards[formationID] = clip
	return nil
}

// Paste writes the clipboard to ms, creating the timestamp if needed.
func (s *FormationService) Paste(ctx context.Context, formationID string, ms int64) (*domain.Formation, error) {
	s.clipMu.Lock()
	clip, ok := s.clipboards[formationID]
	var snapshot formation.Clipboard
	if ok {
		snapshot = *clip
	}
	s.clipMu.Unlock()

	return s.modify(ctx, formationID, "paste", func(_ *domain.Distribution, tl domain.Timeline) (domain.Timeline, error) {
		return snapshot.Paste(tl, ms)
	})
}

// Timestamps returns the formation's timestamps in ascending order.
func (s *FormationService) Timestamps(ctx context.Context, formationID string) ([]int64, error) {
	f, err := s.GetFormation(ctx, formationID)
	if err != nil {
		return nil, err
	}
	return formation.Timestamps(f.Timeline), nil
}

// Next returns the first timestamp after ms.
func (s *FormationService) Next(ctx context.Context, formationID string, ms int64) (int64, bool, error) {
	f, err := s.GetFormation(ctx, formationID)
	if err != nil {
		return 0, false, err
	}
	next, ok := formation.Next(f.Timeline, ms)
	return next, ok, nil
}

// Previous returns the last timestamp before ms.
func (s *FormationService) Previous(ctx context.Context, formationID string, ms int64) (int64, bool, error) {
	f, err := s.GetFormation(ctx, formationID)
	if err != nil {
		return 0, false, err
	}
	prev, ok := formation.Previous(f.Timeline, ms)
	return prev, ok, nil
}

// modify runs fn on the stored timeline and saves the timeline it returns,
// retrying on a concurrent write.
func (s *FormationService) modify(ctx context.Context, formationID, op string, fn func(dist *domain.Distribution, tl domain.Timeline) (domain.Timeline, error)) (*domain.Formation, error) {
	for attempt := 1; ; attempt++ {
		loaded, err := s.store.GetFormation(ctx, formationID)
		if err != nil {
			return nil, storeError(err, "formation", formationID)
		}
		dist, err := s.store.GetDistribution(ctx, loaded.DistributionID)
		if err != nil {
			return nil, storeError(err, "distribution", loaded.DistributionID)
		}

		timeline, err := fn(dist, loaded.Timeline)
		if err != nil {
			s.logger.Debug("formation edit rejected", "formation_id", formationID, "op", op, "error", err)
			return nil, err
		}

		f := loaded.Clone()
		f.Timeline = timeline
		f.Touch()
		if !f.UpdatedAt.After(loaded.UpdatedAt) {
			f.UpdatedAt = loaded.UpdatedAt.Add(minStep)
		}

		err = s.store.UpdateFormation(ctx, f, loaded.UpdatedAt)
		if errors.Is(err, store.ErrStaleWrite) && attempt < maxEditAttempts {
			s.logger.Debug("formation changed during edit, retrying", "formation_id", formationID, "op", op, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, storeError(err, "formation", formationID)
		}

		s.logger.Info("formation updated", "formation_id", formationID, "op", op)
		return f, nil
	}
}
