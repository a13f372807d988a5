// Package search provides full-text song search backed by Bleve.
package search

import (
	"strings"
	"time"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// SongDocument is the flattened, indexable form of a song.
type SongDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist,omitempty"`
	Lyrics     string    `json:"lyrics,omitempty"`
	Kinds      []string  `json:"kinds,omitempty"`
	GroupID    string    `json:"group_id,omitempty"`
	Duration   int64     `json:"duration"`
	Parts      int       `json:"parts"`
	Completion int       `json:"completion"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SongToDocument flattens a song. Lyrics are the song's lines in section
// order, one per text line; empty lines are left out.
func SongToDocument(song *domain.Song) *SongDocument {
	summary := song.Summary()

	var (
		lyrics strings.Builder
		kinds  []string
		seen   = make(map[domain.SectionKind]bool)
	)
	for _, sectionID := range song.SectionIDs {
		sec, ok := song.Content.Sections[sectionID]
		if !ok {
			continue
		}
		if !seen[sec.Kind] {
			seen[sec.Kind] = true
			kinds = append(kinds, string(sec.Kind))
		}
		for _, lineID := range sec.LinesIDs {
			line, ok := song.Content.Lines[lineID]
			if !ok {
				continue
			}
			var words []string
			for _, partID := range line.PartsIDs {
				if part, ok := song.Content.Parts[partID]; ok && strings.TrimSpace(part.Text) != "" {
					words = append(words, strings.TrimSpace(part.Text))
				}
			}
			if len(words) == 0 {
				continue
			}
			lyrics.WriteString(strings.Join(words, " "))
			lyrics.WriteByte('\n')
		}
	}

	return &SongDocument{
		ID:         song.ID,
		Title:      song.Title,
		Artist:     song.Artist,
		Lyrics:     strings.TrimSuffix(lyrics.String(), "\n"),
		Kinds:      kinds,
		GroupID:    song.GroupID,
		Duration:   summary.Duration,
		Parts:      summary.Parts,
		Completion: summary.Completion,
		UpdatedAt:  song.UpdatedAt,
	}
}

// ToMap converts the document to the field names used by the index mapping.
func (d *SongDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"duration":   float64(d.Duration),
		"parts":      float64(d.Parts),
		"completion": float64(d.Completion),
		"updated_at": float64(d.UpdatedAt.UnixMilli()),
	}
	if d.Artist != "" {
		m["artist"] = d.Artist
		m["artist_exact"] = strings.ToLower(d.Artist)
	}
	if d.Lyrics != "" {
		m["lyrics"] = d.Lyrics
	}
	if len(d.Kinds) > 0 {
		m["kinds"] = d.Kinds
	}
	if d.GroupID != "" {
		m["group_id"] = d.GroupID
	}
	return m
}
