// Package songedit implements the structural edit operations on a song.
//
// Edits run inside a transaction. Begin clones the song once, every operation
// mutates that working copy in place, and Commit hands the result back. Callers
// composing several operations see each intermediate state without paying for
// a clone per step:
//
//	song, err := songedit.Edit(song, registry, func(tx *songedit.Tx) error {
//		if err := tx.MergeLines(a, b); err != nil {
//			return err
//		}
//		return tx.RenumberSections()
//	})
//
// Edit only returns the new song when every operation succeeded, so a failed
// edit leaves the caller's song untouched.
package songedit

import (
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/id"
)

// Append as an insertion position places the new entity after all existing siblings.
const Append = -1

// Tx is an open edit over a working copy of a song.
// A Tx is not safe for concurrent use and must not be used after Commit.
type Tx struct {
	song *domain.Song
	ids  *id.Registry
}

// Begin opens a transaction over a copy of song. The registry is seeded with
// the song's existing ids so new ids never collide with them. A nil registry
// gets a private one.
func Begin(song *domain.Song, ids *id.Registry) *Tx {
	if ids == nil {
		ids = id.NewRegistry()
	}
	working := song.Clone()
	ids.Seed(working.IDs()...)
	return &Tx{song: working, ids: ids}
}

// Song exposes the working copy for reads between operations.
func (tx *Tx) Song() *domain.Song {
	return tx.song
}

// Commit stamps the working copy as updated and returns it.
func (tx *Tx) Commit() *domain.Song {
	tx.song.Touch()
	return tx.song
}

// Edit runs fn inside a transaction and returns the committed song.
// If fn fails the error is returned and song is left as it was.
func Edit(song *domain.Song, ids *id.Registry, fn func(tx *Tx) error) (*domain.Song, error) {
	tx := Begin(song, ids)
	if err := fn(tx); err != nil {
		return nil, err
	}
	return tx.Commit(), nil
}

func (tx *Tx) newSectionID() (domain.SectionID, error) {
	raw, err := tx.ids.Generate(domain.SectionPrefix, id.DefaultLength)
	return domain.SectionID(raw), err
}

func (tx *Tx) newLineID() (domain.LineID, error) {
	raw, err := tx.ids.Generate(domain.LinePrefix, id.DefaultLength)
	return domain.LineID(raw), err
}

func (tx *Tx) newPartID() (domain.PartID, error) {
	raw, err := tx.ids.Generate(domain.PartPrefix, id.DefaultLength)
	return domain.PartID(raw), err
}

// insertAt inserts v at index at; an out of range index appends.
func insertAt[T any](s []T, at int, v T) []T {
	if at < 0 || at >= len(s) {
		return append(s, v)
	}
	s = append(s, v)
	copy(s[at+1:], s[at:])
	s[at] = v
	return s
}

// remove drops every occurrence of v.
func remove[T comparable](s []T, v T) []T {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
