package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchSongs",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/songs",
		Summary:     "Search songs",
		Description: "Full-text search over song titles, artists and lyrics with optional filters and facets",
		Tags:        []string{"Search"},
	}, s.handleSearchSongs)

	huma.Register(s.api, huma.Operation{
		OperationID:   "reindexSongs",
		Method:        http.MethodPost,
		Path:          "/api/v1/search/reindex",
		Summary:       "Rebuild search index",
		Description:   "Drops the song index and re-indexes every stored song",
		Tags:          []string{"Search"},
		DefaultStatus: http.StatusAccepted,
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains parameters for searching songs.
type SearchInput struct {
	Query         string `query:"q" validate:"omitempty,max=200" doc:"Search query; all songs when empty"`
	Kinds         string `query:"kinds" validate:"omitempty,max=200" doc:"Comma-separated section kinds, e.g. CHORUS,RAP"`
	GroupID       string `query:"groupId" doc:"Only songs performed by this group"`
	Artist        string `query:"artist" validate:"omitempty,max=200" doc:"Exact artist, case-insensitive"`
	MinCompletion int    `query:"minCompletion" validate:"omitempty,gte=0,lte=100" doc:"Minimum completion percentage"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset        int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	Sort          string `query:"sort" validate:"omitempty,oneof=relevance title recent duration completion" doc:"Sort field"`
	Order         string `query:"order" validate:"omitempty,oneof=asc desc" doc:"Sort order"`
	Facets        bool   `query:"facets" default:"true" doc:"Include facet counts"`
	Highlight     bool   `query:"highlight" default:"true" doc:"Include highlighted fragments"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// ReindexResponse reports a finished reindex.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of songs indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearchSongs(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = strings.TrimSpace(input.Query)
	params.GroupID = input.GroupID
	params.Artist = input.Artist
	params.MinCompletion = input.MinCompletion
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets
	params.Highlight = input.Highlight
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}
	for kind := range strings.SplitSeq(input.Kinds, ",") {
		if kind = strings.ToUpper(strings.TrimSpace(kind)); kind != "" {
			params.Kinds = append(params.Kinds, kind)
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", params.Query)
		return nil, err
	}

	s.logger.Debug("search completed",
		"query", params.Query,
		"total", result.Total,
		"hits", len(result.Hits),
		"took_ms", result.TookMs,
	)
	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	count, err := s.services.Search.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: ReindexResponse{Indexed: count}}, nil
}
