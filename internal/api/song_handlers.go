package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/service"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

func (s *Server) registerSongRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSong",
		Method:        http.MethodPost,
		Path:          "/api/v1/songs",
		Summary:       "Create song",
		Description:   "Creates a song, parsing optional bulk lyric text into sections, lines and parts",
		Tags:          []string{"Songs"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSongs",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs",
		Summary:     "List songs",
		Description: "Returns songs page by page, or every song of an artist or group",
		Tags:        []string{"Songs"},
	}, s.handleListSongs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSong",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}",
		Summary:     "Get song",
		Description: "Returns a song with its full content tree",
		Tags:        []string{"Songs"},
	}, s.handleGetSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSong",
		Method:      http.MethodPatch,
		Path:        "/api/v1/songs/{id}",
		Summary:     "Update song metadata",
		Description: "Changes title, artist, video, group or performable range",
		Tags:        []string{"Songs"},
	}, s.handleUpdateSong)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSong",
		Method:        http.MethodDelete,
		Path:          "/api/v1/songs/{id}",
		Summary:       "Delete song",
		Description:   "Deletes a song with its distributions and formations",
		Tags:          []string{"Songs"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSongSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}/summary",
		Summary:     "Get song summary",
		Description: "Returns entity counts, duration and overall completion",
		Tags:        []string{"Songs"},
	}, s.handleGetSongSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateSong",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}/validation",
		Summary:     "Validate song",
		Description: "Lists every content invariant the stored song violates",
		Tags:        []string{"Songs"},
	}, s.handleValidateSong)
}

// === DTOs ===

// SongIDInput addresses a song.
type SongIDInput struct {
	ID string `path:"id" doc:"Song ID"`
}

// SongOutput wraps a song response for Huma.
type SongOutput struct {
	Body SongResponse
}

// CreateSongRequest is the request body for creating a song.
type CreateSongRequest struct {
	Title   string `json:"title" validate:"required,max=200" doc:"Song title"`
	Artist  string `json:"artist,omitempty" validate:"max=200" doc:"Performing artist"`
	VideoID string `json:"videoId,omitempty" validate:"max=64" doc:"Video handed to the player"`
	GroupID string `json:"groupId,omitempty" validate:"max=64" doc:"Group the song belongs to"`
	Lyrics  string `json:"lyrics,omitempty" doc:"Lyric text: blank lines separate sections, newlines separate lines, | separates parts; a [KIND] first line tags the section"`
	StartAt int64  `json:"startAt,omitempty" validate:"gte=0" doc:"Start of the performable range (ms)"`
	EndAt   int64  `json:"endAt,omitempty" validate:"gte=0" doc:"End of the performable range (ms)"`
}

// CreateSongInput wraps the create song request for Huma.
type CreateSongInput struct {
	Body CreateSongRequest
}

// ListSongsInput contains parameters for listing songs.
type ListSongsInput struct {
	Limit   int    `query:"limit" doc:"Page size"`
	Cursor  string `query:"cursor" doc:"Cursor from the previous page"`
	Artist  string `query:"artist" doc:"Only songs by this artist (case-insensitive)"`
	GroupID string `query:"groupId" doc:"Only songs of this group"`
}

// ListSongsResponse is a page of songs.
type ListSongsResponse struct {
	Songs      []SongListItem `json:"songs" doc:"Songs on this page"`
	NextCursor string         `json:"nextCursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"hasMore" doc:"Whether more pages exist"`
}

// ListSongsOutput wraps the song listing for Huma.
type ListSongsOutput struct {
	Body ListSongsResponse
}

// UpdateSongRequest is the request body for updating song metadata.
type UpdateSongRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=200" doc:"Song title"`
	Artist  *string `json:"artist,omitempty" validate:"omitempty,max=200" doc:"Performing artist"`
	VideoID *string `json:"videoId,omitempty" validate:"omitempty,max=64" doc:"Video handed to the player"`
	GroupID *string `json:"groupId,omitempty" validate:"omitempty,max=64" doc:"Group the song belongs to"`
	StartAt *int64  `json:"startAt,omitempty" validate:"omitempty,gte=0" doc:"Start of the performable range (ms)"`
	EndAt   *int64  `json:"endAt,omitempty" validate:"omitempty,gte=0" doc:"End of the performable range (ms)"`
}

// UpdateSongInput wraps the update song request for Huma.
type UpdateSongInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body UpdateSongRequest
}

// SongSummaryOutput wraps a song summary for Huma.
type SongSummaryOutput struct {
	Body domain.SongSummary
}

// ValidationReport lists broken invariants.
type ValidationReport struct {
	Valid      bool               `json:"valid" doc:"Whether the song is consistent"`
	Violations []domain.Violation `json:"violations" doc:"Every broken invariant"`
}

// ValidationOutput wraps a validation report for Huma.
type ValidationOutput struct {
	Body ValidationReport
}

// === Handlers ===

func (s *Server) handleCreateSong(ctx context.Context, input *CreateSongInput) (*SongOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}

	song, err := s.services.Song.CreateSong(ctx, service.CreateSongInput{
		Title:   input.Body.Title,
		Artist:  input.Body.Artist,
		VideoID: input.Body.VideoID,
		GroupID: input.Body.GroupID,
		Lyrics:  input.Body.Lyrics,
		StartAt: input.Body.StartAt,
		EndAt:   input.Body.EndAt,
	})
	if err != nil {
		return nil, err
	}

	return &SongOutput{Body: toSongResponse(song)}, nil
}

func (s *Server) handleListSongs(ctx context.Context, input *ListSongsInput) (*ListSongsOutput, error) {
	var songs []*domain.Song
	var err error

	switch {
	case input.Artist != "":
		songs, err = s.services.Song.ListSongsByArtist(ctx, input.Artist)
	case input.GroupID != "":
		songs, err = s.services.Song.ListSongsByGroup(ctx, input.GroupID)
	default:
		var page *store.PaginatedResult[domain.Song]
		page, err = s.services.Song.ListSongs(ctx, store.PaginationParams{
			Limit:  input.Limit,
			Cursor: input.Cursor,
		})
		if err != nil {
			return nil, err
		}
		items := make([]SongListItem, len(page.Items))
		for i := range page.Items {
			items[i] = toSongListItem(&page.Items[i])
		}
		return &ListSongsOutput{Body: ListSongsResponse{
			Songs:      items,
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		}}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]SongListItem, len(songs))
	for i, song := range songs {
		items[i] = toSongListItem(song)
	}
	return &ListSongsOutput{Body: ListSongsResponse{Songs: items}}, nil
}

func (s *Server) handleGetSong(ctx context.Context, input *SongIDInput) (*SongOutput, error) {
	song, err := s.services.Song.GetSong(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: toSongResponse(song)}, nil
}

func (s *Server) handleUpdateSong(ctx context.Context, input *UpdateSongInput) (*SongOutput, error) {
	if err := s.validate(&input.Body); err != nil {
		return nil, err
	}

	song, err := s.services.Song.UpdateMetadata(ctx, input.ID, service.SongMetadata{
		Title:   input.Body.Title,
		Artist:  input.Body.Artist,
		VideoID: input.Body.VideoID,
		GroupID: input.Body.GroupID,
		StartAt: input.Body.StartAt,
		EndAt:   input.Body.EndAt,
	})
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: toSongResponse(song)}, nil
}

func (s *Server) handleDeleteSong(ctx context.Context, input *SongIDInput) (*struct{}, error) {
	if err := s.services.Song.DeleteSong(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleGetSongSummary(ctx context.Context, input *SongIDInput) (*SongSummaryOutput, error) {
	song, err := s.services.Song.GetSong(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SongSummaryOutput{Body: song.Summary()}, nil
}

func (s *Server) handleValidateSong(ctx context.Context, input *SongIDInput) (*ValidationOutput, error) {
	violations, err := s.services.Song.Validate(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if violations == nil {
		violations = []domain.Violation{}
	}
	return &ValidationOutput{Body: ValidationReport{
		Valid:      len(violations) == 0,
		Violations: violations,
	}}, nil
}
