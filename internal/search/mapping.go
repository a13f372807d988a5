package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for song documents.
//
// Titles and lyrics use the standard analyzer: lyrics mix languages, so no
// stemming. Artist uses the simple analyzer plus a keyword copy for faceting.
// Section kinds and group ids are keywords for exact filters.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	artistFieldMapping := bleve.NewTextFieldMapping()
	artistFieldMapping.Analyzer = simple.Name
	artistFieldMapping.Store = true
	artistFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("artist", artistFieldMapping)

	// Lyrics are stored so hits can carry a highlighted fragment.
	lyricsFieldMapping := bleve.NewTextFieldMapping()
	lyricsFieldMapping.Analyzer = standard.Name
	lyricsFieldMapping.Store = true
	lyricsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("lyrics", lyricsFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	for _, field := range []string{"id", "kinds", "group_id", "artist_exact"} {
		keywordFieldMapping := bleve.NewTextFieldMapping()
		keywordFieldMapping.Analyzer = keyword.Name
		keywordFieldMapping.Store = field == "kinds"
		docMapping.AddFieldMappingsAt(field, keywordFieldMapping)
	}

	// --- Numeric fields (range queries, sorting) ---

	for _, field := range []string{"duration", "parts", "completion", "updated_at"} {
		numericFieldMapping := bleve.NewNumericFieldMapping()
		numericFieldMapping.Store = true
		docMapping.AddFieldMappingsAt(field, numericFieldMapping)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
