package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/id"
	"github.com/lyricsplit/lyricsplit-server/internal/songedit"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// SongService loads songs, runs structural edits on them and persists the result.
type SongService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSongService creates a new song service.
func NewSongService(store *store.Store, logger *slog.Logger) *SongService {
	return &SongService{
		store:  store,
		logger: logger,
	}
}

// CreateSongInput describes a new song. Lyrics, when present, are parsed
// into sections, lines and parts.
type CreateSongInput struct {
	Title   string
	Artist  string
	VideoID string
	GroupID string
	Lyrics  string
	StartAt int64
	EndAt   int64
}

// SongMetadata lists the song fields to change; nil fields are left alone.
type SongMetadata struct {
	Title   *string
	Artist  *string
	VideoID *string
	GroupID *string
	StartAt *int64
	EndAt   *int64
}

// CreateSong builds and stores a new song.
func (s *SongService) CreateSong(ctx context.Context, in CreateSongInput) (*domain.Song, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domainerrors.Validation("title is required")
	}
	if in.StartAt < 0 || in.EndAt < 0 || (in.EndAt > 0 && in.EndAt < in.StartAt) {
		return nil, domainerrors.Validationf("invalid song window [%d, %d]", in.StartAt, in.EndAt)
	}

	songID := id.NewDocumentID("song")
	song, err := songedit.NewSongFromText(songID, title, in.Lyrics, nil)
	if err != nil {
		return nil, err
	}
	song.Artist = strings.TrimSpace(in.Artist)
	song.VideoID = in.VideoID
	song.GroupID = in.GroupID
	song.StartAt = in.StartAt
	song.EndAt = in.EndAt

	if err := s.store.CreateSong(ctx, song); err != nil {
		return nil, storeError(err, "song", songID)
	}

	summary := song.Summary()
	s.logger.Info("song created",
		"song_id", song.ID,
		"sections", summary.Sections,
		"lines", summary.Lines,
		"parts", summary.Parts,
	)
	return song, nil
}

// GetSong returns a song by ID.
func (s *SongService) GetSong(ctx context.Context, songID string) (*domain.Song, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, storeError(err, "song", songID)
	}
	return song, nil
}

// ListSongs returns one page of songs.
func (s *SongService) ListSongs(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.Song], error) {
	page, err := s.store.ListSongs(ctx, params)
	if err != nil {
		return nil, storeError(err, "song", "")
	}
	return page, nil
}

// ListSongsByArtist returns every song by an artist.
func (s *SongService) ListSongsByArtist(ctx context.Context, artist string) ([]*domain.Song, error) {
	return s.store.ListSongsByArtist(ctx, artist)
}

// ListSongsByGroup returns the songs a group performs.
func (s *SongService) ListSongsByGroup(ctx context.Context, groupID string) ([]*domain.Song, error) {
	return s.store.ListSongsByGroup(ctx, groupID)
}

// DeleteSong removes a song with its distributions and formations.
func (s *SongService) DeleteSong(ctx context.Context, songID string) error {
	if err := s.store.DeleteSong(ctx, songID); err != nil {
		return storeError(err, "song", songID)
	}
	s.logger.Info("song deleted", "song_id", songID)
	return nil
}

// UpdateMetadata changes the song's descriptive fields and playback window.
func (s *SongService) UpdateMetadata(ctx context.Context, songID string, m SongMetadata) (*domain.Song, error) {
	return s.modify(ctx, songID, "update_metadata", func(song *domain.Song) error {
		if m.Title != nil {
			title := strings.TrimSpace(*m.Title)
			if title == "" {
				return domainerrors.Validation("title is required")
			}
			song.Title = title
		}
		if m.Artist != nil {
			song.Artist = strings.TrimSpace(*m.Artist)
		}
		if m.VideoID != nil {
			song.VideoID = *m.VideoID
		}
		if m.GroupID != nil {
			song.GroupID = *m.GroupID
		}
		if m.StartAt != nil {
			song.StartAt = *m.StartAt
		}
		if m.EndAt != nil {
			song.EndAt = *m.EndAt
		}
		if song.StartAt < 0 || song.EndAt < 0 || (song.EndAt > 0 && song.EndAt < song.StartAt) {
			return domainerrors.Validationf("invalid song window [%d, %d]", song.StartAt, song.EndAt)
		}
		return nil
	})
}

// Edit runs a structural edit transaction against the stored song and saves
// the result. The committed song must pass domain.Validate; a song that does
// not is never written. If another writer saved the song in the meantime the
// edit is replayed on the fresh copy.
func (s *SongService) Edit(ctx context.Context, songID, op string, fn func(tx *songedit.Tx) error) (*domain.Song, error) {
	return s.modify(ctx, songID, op, func(song *domain.Song) error {
		edited, err := songedit.Edit(song, nil, fn)
		if err != nil {
			return err
		}
		*song = *edited
		return nil
	})
}

// modify loads a song, applies fn to a copy, validates and saves it.
func (s *SongService) modify(ctx context.Context, songID, op string, fn func(song *domain.Song) error) (*domain.Song, error) {
	for attempt := 1; ; attempt++ {
		loaded, err := s.store.GetSong(ctx, songID)
		if err != nil {
			return nil, storeError(err, "song", songID)
		}

		song := loaded.Clone()
		if err := fn(song); err != nil {
			s.logger.Debug("song edit rejected", "song_id", songID, "op", op, "error", err)
			return nil, err
		}
		song.Touch()
		if !song.UpdatedAt.After(loaded.UpdatedAt) {
			song.UpdatedAt = loaded.UpdatedAt.Add(minStep)
		}

		if violations := domain.Validate(song); len(violations) > 0 {
			s.logger.Error("song edit broke content invariants",
				"song_id", songID,
				"op", op,
				"violations", len(violations),
			)
			return nil, domainerrors.Internalf("%s left song %s inconsistent", op, songID).WithDetails(violations)
		}

		err = s.store.UpdateSong(ctx, song, loaded.UpdatedAt)
		if errors.Is(err, store.ErrStaleWrite) && attempt < maxEditAttempts {
			s.logger.Debug("song changed during edit, retrying", "song_id", songID, "op", op, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, storeError(err, "song", songID)
		}

		s.logger.Info("song edited", "song_id", songID, "op", op)
		return song, nil
	}
}

// Validate reports every content invariant the stored song violates.
func (s *SongService) Validate(ctx context.Context, songID string) ([]domain.Violation, error) {
	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return nil, err
	}
	return domain.Validate(song), nil
}
