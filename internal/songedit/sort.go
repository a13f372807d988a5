package songedit

import (
	"cmp"
	"slices"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// SortLine orders a line's parts by start time. Ties keep their order.
func (tx *Tx) SortLine(lineID domain.LineID) error {
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	starts := make(map[domain.PartID]int64, len(line.PartsIDs))
	for _, partID := range line.PartsIDs {
		part, err := tx.song.Part(partID)
		if err != nil {
			return err
		}
		starts[partID] = part.StartTime
	}
	slices.SortStableFunc(line.PartsIDs, func(a, b domain.PartID) int {
		return cmp.Compare(starts[a], starts[b])
	})
	return nil
}

// SortSection sorts every line of the section, then orders the lines by the
// start time of their first part.
func (tx *Tx) SortSection(sectionID domain.SectionID) error {
	sec, err := tx.song.Section(sectionID)
	if err != nil {
		return err
	}
	starts := make(map[domain.LineID]int64, len(sec.LinesIDs))
	for _, lineID := range sec.LinesIDs {
		if err := tx.SortLine(lineID); err != nil {
			return err
		}
		if starts[lineID], err = tx.song.LineStartTime(lineID); err != nil {
			return err
		}
	}
	slices.SortStableFunc(sec.LinesIDs, func(a, b domain.LineID) int {
		return cmp.Compare(starts[a], starts[b])
	})
	return nil
}

// SortSong sorts every section, then orders the sections by start time.
func (tx *Tx) SortSong() error {
	starts := make(map[domain.SectionID]int64, len(tx.song.SectionIDs))
	for _, sectionID := range tx.song.SectionIDs {
		if err := tx.SortSection(sectionID); err != nil {
			return err
		}
		start, err := tx.song.SectionStartTime(sectionID)
		if err != nil {
			return err
		}
		starts[sectionID] = start
	}
	slices.SortStableFunc(tx.song.SectionIDs, func(a, b domain.SectionID) int {
		return cmp.Compare(starts[a], starts[b])
	})
	return nil
}
