package songedit

import (
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// Nudge shifts the timing of parts by delta milliseconds. With an empty anchor
// every timed part moves; otherwise only timed parts starting at or after the
// anchor line's start. Untimed parts never move.
//
// A nudge that would push any part below zero is rejected and nothing moves.
func (tx *Tx) Nudge(delta int64, anchor domain.LineID) error {
	var from int64
	if anchor != "" {
		start, err := tx.song.LineStartTime(anchor)
		if err != nil {
			return err
		}
		from = start
	}

	var affected []*domain.Part
	for _, part := range tx.song.Content.Parts {
		if !part.IsTimed() || part.StartTime < from {
			continue
		}
		if part.StartTime+delta < 0 || part.EndTime+delta < 0 {
			return domainerrors.Preconditionf("nudging part %s by %dms makes its timing negative", part.ID, delta)
		}
		affected = append(affected, part)
	}

	for _, part := range affected {
		part.StartTime += delta
		part.EndTime += delta
	}
	return nil
}
