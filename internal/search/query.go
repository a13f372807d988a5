package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a song search.
type SearchParams struct {
	Query string // Free text matched against title, artist and lyrics

	// Filters
	Kinds         []string // Songs containing any of these section kinds
	GroupID       string
	Artist        string // Exact artist, case-insensitive
	MinCompletion int    // Minimum completion percentage

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "recent", "duration", "completion"
	SortOrder string // "asc", "desc"

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"tookMs"`
	Hits   []SongHit    `json:"hits"`
	Facets SearchFacets `json:"facets,omitzero"`
}

// SongHit is a single matching song.
type SongHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Artist     string            `json:"artist,omitempty"`
	Duration   int64             `json:"duration"`
	Completion int               `json:"completion"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Kinds   []FacetCount `json:"kinds,omitempty"`
	Artists []FacetCount `json:"artists,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SongIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("kinds", bleve.NewFacetRequest("kinds", 20))
		req.AddFacet("artist_exact", bleve.NewFacetRequest("artist_exact", 20))
	}
	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("artist")
		req.Highlight.AddField("lyrics")
	}
	req.Fields = []string{"title", "artist", "duration", "completion"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SongHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		songHit := SongHit{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["title"].(string); ok {
			songHit.Title = v
		}
		if v, ok := hit.Fields["artist"].(string); ok {
			songHit.Artist = v
		}
		if v, ok := hit.Fields["duration"].(float64); ok {
			songHit.Duration = int64(v)
		}
		if v, ok := hit.Fields["completion"].(float64); ok {
			songHit.Completion = int(v)
		}
		if len(hit.Fragments) > 0 {
			songHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					songHit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, songHit)
	}

	if params.IncludeFacets {
		result.Facets = SearchFacets{
			Kinds:   facetCounts(res, "kinds"),
			Artists: facetCounts(res, "artist_exact"),
		}
	}
	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// Title matches rank above artist matches, which rank above lyric matches.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		titleMatch := bleve.NewMatchQuery(text)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		artistMatch := bleve.NewMatchQuery(text)
		artistMatch.SetField("artist")
		artistMatch.SetBoost(2.0)

		lyricsMatch := bleve.NewMatchPhraseQuery(text)
		lyricsMatch.SetField("lyrics")
		lyricsMatch.SetBoost(1.5)

		lyricsWords := bleve.NewMatchQuery(text)
		lyricsWords.SetField("lyrics")

		// Typo tolerance on titles
		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, artistMatch, lyricsMatch, lyricsWords, fuzzyQuery}

		// Prefix query for autocomplete (minimum 2 chars)
		if len(text) >= 2 && !strings.Contains(text, " ") {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(text))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Kinds) > 0 {
		kindQueries := make([]query.Query, len(params.Kinds))
		for i, kind := range params.Kinds {
			tq := bleve.NewTermQuery(strings.ToUpper(kind))
			tq.SetField("kinds")
			kindQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(kindQueries...))
	}

	if params.GroupID != "" {
		tq := bleve.NewTermQuery(params.GroupID)
		tq.SetField("group_id")
		queries = append(queries, tq)
	}

	if params.Artist != "" {
		tq := bleve.NewTermQuery(strings.ToLower(params.Artist))
		tq.SetField("artist_exact")
		queries = append(queries, tq)
	}

	if params.MinCompletion > 0 {
		minimum := float64(params.MinCompletion)
		inclusive := true
		rangeQuery := bleve.NewNumericRangeInclusiveQuery(&minimum, nil, &inclusive, nil)
		rangeQuery.SetField("completion")
		queries = append(queries, rangeQuery)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	desc := params.SortOrder == "desc"
	field := ""
	switch params.SortBy {
	case "title":
		field = "title"
	case "recent":
		field = "updated_at"
		desc = params.SortOrder != "asc"
	case "duration":
		field = "duration"
	case "completion":
		field = "completion"
	default:
		req.SortBy([]string{"-_score"})
		return
	}
	if desc {
		field = "-" + field
	}
	req.SortBy([]string{field, "_id"})
}

func facetCounts(res *bleve.SearchResult, name string) []FacetCount {
	facet, ok := res.Facets[name]
	if !ok || facet.Terms == nil {
		return nil
	}
	var out []FacetCount
	for _, term := range facet.Terms.Terms() {
		out = append(out, FacetCount{Value: term.Term, Count: term.Count})
	}
	return out
}
