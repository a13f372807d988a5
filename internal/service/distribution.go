package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/cache"
	"github.com/lyricsplit/lyricsplit-server/internal/distribution"
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/formation"
	"github.com/lyricsplit/lyricsplit-server/internal/id"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// DistributionService manages distributions and the playback data derived from them.
type DistributionService struct {
	store     *store.Store
	snapshots cache.Snapshots
	logger    *slog.Logger
}

// NewDistributionService creates a new distribution service.
// A nil snapshots cache computes every request directly.
func NewDistributionService(store *store.Store, snapshots cache.Snapshots, logger *slog.Logger) *DistributionService {
	if snapshots == nil {
		snapshots = cache.Direct{}
	}
	return &DistributionService{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
	}
}

// CreateDistributionInput describes a new distribution of a song.
type CreateDistributionInput struct {
	SongID    string
	GroupID   string
	Name      string
	Assignees []domain.Assignee
}

// CreateDistribution creates an empty mapping of a song to a roster of performers.
func (s *DistributionService) CreateDistribution(ctx context.Context, in CreateDistributionInput) (*domain.Distribution, error) {
	roster, err := buildRoster(in.Assignees)
	if err != nil {
		return nil, err
	}

	dist := domain.NewDistribution(id.NewDocumentID("dist"), in.SongID, in.GroupID)
	dist.Name = strings.TrimSpace(in.Name)
	dist.Assignees = roster

	if err := s.store.CreateDistribution(ctx, dist); err != nil {
		return nil, storeError(err, "song", in.SongID)
	}

	s.logger.Info("distribution created",
		"distribution_id", dist.ID,
		"song_id", dist.SongID,
		"assignees", len(roster),
	)
	return dist, nil
}

// GetDistribution returns a distribution by ID.
func (s *DistributionService) GetDistribution(ctx context.Context, distributionID string) (*domain.Distribution, error) {
	dist, err := s.store.GetDistribution(ctx, distributionID)
	if err != nil {
		return nil, storeError(err, "distribution", distributionID)
	}
	return dist, nil
}

// ListDistributionsBySong returns every distribution of a song.
func (s *DistributionService) ListDistributionsBySong(ctx context.Context, songID string) ([]*domain.Distribution, error) {
	if _, err := s.store.GetSong(ctx, songID); err != nil {
		return nil, storeError(err, "song", songID)
	}
	return s.store.ListDistributionsBySong(ctx, songID)
}

// DeleteDistribution removes a distribution with its formations and cached snapshots.
func (s *DistributionService) DeleteDistribution(ctx context.Context, distributionID string) error {
	if err := s.store.DeleteDistribution(ctx, distributionID); err != nil {
		return storeError(err, "distribution", distributionID)
	}
	s.invalidate(ctx, distributionID)
	s.logger.Info("distribution deleted", "distribution_id", distributionID)
	return nil
}

// Rename changes the distribution's display name.
func (s *DistributionService) Rename(ctx context.Context, distributionID, name string) (*domain.Distribution, error) {
	return s.modify(ctx, distributionID, "rename", func(d *domain.Distribution) error {
		d.Name = strings.TrimSpace(name)
		return nil
	})
}

// SetAssignees replaces the roster. Mapping entries that point at performers
// no longer in the roster are dropped; sentinels are kept. The distribution's
// formations are realigned so every performer keeps their own positions.
func (s *DistributionService) SetAssignees(ctx context.Context, distributionID string, assignees []domain.Assignee) (*domain.Distribution, error) {
	roster, err := buildRoster(assignees)
	if err != nil {
		return nil, err
	}
	var before []string
	dist, err := s.modify(ctx, distributionID, "set_assignees", func(d *domain.Distribution) error {
		before = d.AssigneeIDs()
		d.Assignees = roster
		for partID, ids := range d.Mapping {
			kept := ids[:0]
			for _, assigneeID := range ids {
				if _, ok := roster[assigneeID]; ok || domain.IsSentinelAssignee(assigneeID) {
					kept = append(kept, assigneeID)
				}
			}
			if len(kept) == 0 {
				delete(d.Mapping, partID)
			} else {
				d.Mapping[partID] = kept
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.realignFormations(ctx, distributionID, before, dist.AssigneeIDs()); err != nil {
		return nil, err
	}
	return dist, nil
}

// realignFormations rewrites every formation of the distribution from the
// performer order before to the order after.
func (s *DistributionService) realignFormations(ctx context.Context, distributionID string, before, after []string) error {
	if slices.Equal(before, after) {
		return nil
	}
	forms, err := s.store.ListFormationsByDistribution(ctx, distributionID)
	if err != nil {
		return err
	}
	for _, f := range forms {
		if err := s.realignFormation(ctx, f, before, after); err != nil {
			return err
		}
	}
	return nil
}

func (s *DistributionService) realignFormation(ctx context.Context, loaded *domain.Formation, before, after []string) error {
	for attempt := 1; ; attempt++ {
		f := loaded.Clone()
		f.Timeline = formation.Realign(loaded.Timeline, before, after)
		f.Touch()
		if !f.UpdatedAt.After(loaded.UpdatedAt) {
			f.UpdatedAt = loaded.UpdatedAt.Add(minStep)
		}

		err := s.store.UpdateFormation(ctx, f, loaded.UpdatedAt)
		if errors.Is(err, store.ErrStaleWrite) && attempt < maxEditAttempts {
			if loaded, err = s.store.GetFormation(ctx, loaded.ID); err != nil {
				return storeError(err, "formation", f.ID)
			}
			continue
		}
		if err != nil {
			return storeError(err, "formation", f.ID)
		}
		s.logger.Info("formation realigned", "formation_id", f.ID, "distribution_id", f.DistributionID, "assignees", len(after))
		return nil
	}
}

// Assign maps every given part to the given assignees, replacing what the
// parts were mapped to. An empty assignee list clears the parts.
func (s *DistributionService) Assign(ctx context.Context, distributionID string, partIDs []domain.PartID, assigneeIDs []string) (*domain.Distribution, error) {
	if len(partIDs) == 0 {
		return nil, domainerrors.Validation("at least one part is required")
	}
	return s.modifyWithSong(ctx, distributionID, "assign", func(song *domain.Song, d *domain.Distribution) error {
		for _, partID := range partIDs {
			if _, err := song.Part(partID); err != nil {
				return err
			}
		}
		ids, err := rosterIDs(d, assigneeIDs)
		if err != nil {
			return err
		}
		for _, partID := range partIDs {
			if len(ids) == 0 {
				delete(d.Mapping, partID)
				continue
			}
			d.Mapping[partID] = append([]string(nil), ids...)
		}
		return nil
	})
}

// ApplySuggestions maps every unmapped part to its recommended assignee when
// that assignee is in the roster or is ALL or NONE. Returns the number of
// parts that were filled in.
func (s *DistributionService) ApplySuggestions(ctx context.Context, distributionID string) (*domain.Distribution, int, error) {
	applied := 0
	dist, err := s.modifyWithSong(ctx, distributionID, "apply_suggestions", func(song *domain.Song, d *domain.Distribution) error {
		applied = 0
		for partID, part := range song.Content.Parts {
			if len(d.Mapping[partID]) > 0 {
				continue
			}
			rec := part.RecommendedAssignee
			_, inRoster := d.Assignees[rec]
			if rec == domain.AssigneeAll || rec == domain.AssigneeNone || inRoster {
				d.Mapping[partID] = []string{rec}
				applied++
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return dist, applied, nil
}

// Snapshots returns the bar, lyric, adlib and up-next snapshots for the
// distribution, served from the cache when the inputs did not change.
func (s *DistributionService) Snapshots(ctx context.Context, distributionID string) (*distribution.Result, error) {
	song, dist, err := s.load(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	return s.snapshots.Snapshots(ctx, song, dist)
}

// Progress tallies the distribution's current mapping per performer.
func (s *DistributionService) Progress(ctx context.Context, distributionID string) (*distribution.Progress, error) {
	song, dist, err := s.load(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	p := distribution.LiveProgress(song, dist.Assignees, dist.Mapping)
	return &p, nil
}

// PreviewProgress tallies an unsaved mapping against the stored song and roster.
func (s *DistributionService) PreviewProgress(ctx context.Context, distributionID string, mapping domain.Mapping) (*distribution.Progress, error) {
	song, dist, err := s.load(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	p := distribution.LiveProgress(song, dist.Assignees, mapping)
	return &p, nil
}

// Completeness reports the parts the distribution leaves unassigned.
func (s *DistributionService) Completeness(ctx context.Context, distributionID string) (*distribution.Completeness, error) {
	song, dist, err := s.load(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	c := distribution.CheckCompleteness(song, dist)
	return &c, nil
}

func (s *DistributionService) load(ctx context.Context, distributionID string) (*domain.Song, *domain.Distribution, error) {
	dist, err := s.store.GetDistribution(ctx, distributionID)
	if err != nil {
		return nil, nil, storeError(err, "distribution", distributionID)
	}
	song, err := s.store.GetSong(ctx, dist.SongID)
	if err != nil {
		return nil, nil, storeError(err, "song", dist.SongID)
	}
	return song, dist, nil
}

func (s *DistributionService) modify(ctx context.Context, distributionID, op string, fn func(d *domain.Distribution) error) (*domain.Distribution, error) {
	return s.modifyWithSong(ctx, distributionID, op, func(_ *domain.Song, d *domain.Distribution) error {
		return fn(d)
	})
}

// modifyWithSong applies fn to a copy of the distribution and saves it,
// retrying on a concurrent write. The song is read-only context for fn.
func (s *DistributionService) modifyWithSong(ctx context.Context, distributionID, op string, fn func(song *domain.Song, d *domain.Distribution) error) (*domain.Distribution, error) {
	for attempt := 1; ; attempt++ {
		song, loaded, err := s.load(ctx, distributionID)
		if err != nil {
			return nil, err
		}

		dist := loaded.Clone()
		if err := fn(song, dist); err != nil {
			s.logger.Debug("distribution edit rejected", "distribution_id", distributionID, "op", op, "error", err)
			return nil, err
		}
		dist.Touch()
		if !dist.UpdatedAt.After(loaded.UpdatedAt) {
			dist.UpdatedAt = loaded.UpdatedAt.Add(minStep)
		}

		err = s.store.UpdateDistribution(ctx, dist, loaded.UpdatedAt)
		if errors.Is(err, store.ErrStaleWrite) && attempt < maxEditAttempts {
			s.logger.Debug("distribution changed during edit, retrying", "distribution_id", distributionID, "op", op, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, storeError(err, "distribution", distributionID)
		}

		s.invalidate(ctx, distributionID)
		s.logger.Info("distribution updated", "distribution_id", distributionID, "op", op)
		return dist, nil
	}
}

func (s *DistributionService) invalidate(ctx context.Context, distributionID string) {
	if err := s.snapshots.Invalidate(ctx, distributionID); err != nil {
		s.logger.Warn("failed to invalidate snapshot cache", "distribution_id", distributionID, "error", err)
	}
}

// buildRoster validates a performer list and keys it by id.
func buildRoster(assignees []domain.Assignee) (map[string]domain.Assignee, error) {
	roster := make(map[string]domain.Assignee, len(assignees))
	for _, a := range assignees {
		a.ID = strings.TrimSpace(a.ID)
		switch {
		case a.ID == "":
			return nil, domainerrors.Validation("assignee id is required")
		case domain.IsSentinelAssignee(a.ID):
			return nil, domainerrors.Validationf("assignee id %q is reserved", a.ID)
		}
		if _, dup := roster[a.ID]; dup {
			return nil, domainerrors.Validationf("duplicate assignee %q", a.ID)
		}
		roster[a.ID] = a
	}
	return roster, nil
}

// rosterIDs checks that every id is a performer of d or the ALL/NONE sentinel,
// and removes duplicates. UNASSIGNED is not a mapping target.
func rosterIDs(d *domain.Distribution, assigneeIDs []string) ([]string, error) {
	seen := make(map[string]bool, len(assigneeIDs))
	out := make([]string, 0, len(assigneeIDs))
	for _, assigneeID := range assigneeIDs {
		if seen[assigneeID] {
			continue
		}
		_, ok := d.Assignees[assigneeID]
		if !ok && assigneeID != domain.AssigneeAll && assigneeID != domain.AssigneeNone {
			return nil, domainerrors.Preconditionf("assignee %s is not part of distribution %s", assigneeID, d.ID)
		}
		seen[assigneeID] = true
		out = append(out, assigneeID)
	}
	return out, nil
}
