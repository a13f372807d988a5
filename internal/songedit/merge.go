package songedit

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// MergeParts folds parts into the earliest of them. The kept part spans from
// the earliest start to the latest end and its text is the space-joined text
// of all parts in time order. The other parts are removed from the song.
func (tx *Tx) MergeParts(partIDs ...domain.PartID) (domain.PartID, error) {
	parts, err := tx.partsByStart(partIDs)
	if err != nil {
		return "", err
	}

	kept := parts[0]
	texts := make([]string, 0, len(parts))
	end := kept.EndTime
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		end = max(end, p.EndTime)
	}
	for _, p := range parts[1:] {
		if err := tx.DeletePart(p.ID); err != nil {
			return "", err
		}
	}

	kept.EndTime = end
	kept.Text = strings.Join(texts, " ")
	return kept.ID, nil
}

// MergeLines moves every part of the given lines onto the earliest line,
// removes the emptied lines and re-sorts the kept line. Sections left without
// lines are deleted.
func (tx *Tx) MergeLines(lineIDs ...domain.LineID) (domain.LineID, error) {
	ordered, err := tx.linesByStart(lineIDs)
	if err != nil {
		return "", err
	}

	keptID := ordered[0]
	for _, donorID := range ordered[1:] {
		donor := tx.song.Content.Lines[donorID]
		for _, partID := range slices.Clone(donor.PartsIDs) {
			if err := tx.ConnectPart(partID, keptID); err != nil {
				return "", err
			}
		}
		sectionID := donor.SectionID
		if err := tx.DeleteLine(donorID); err != nil {
			return "", err
		}
		if err := tx.deleteIfEmpty(sectionID); err != nil {
			return "", err
		}
	}
	return keptID, tx.SortLine(keptID)
}

// MergeSections moves every line of the given sections onto the earliest
// section, removes the donors and re-sorts the kept section.
func (tx *Tx) MergeSections(sectionIDs ...domain.SectionID) (domain.SectionID, error) {
	ordered, err := tx.sectionsByStart(sectionIDs)
	if err != nil {
		return "", err
	}

	keptID := ordered[0]
	for _, donorID := range ordered[1:] {
		donor := tx.song.Content.Sections[donorID]
		for _, lineID := range slices.Clone(donor.LinesIDs) {
			if err := tx.ConnectLine(lineID, keptID); err != nil {
				return "", err
			}
		}
		if err := tx.DeleteSection(donorID); err != nil {
			return "", err
		}
	}
	return keptID, tx.SortSection(keptID)
}

func (tx *Tx) partsByStart(partIDs []domain.PartID) ([]*domain.Part, error) {
	partIDs = dedupe(partIDs)
	if len(partIDs) < 2 {
		return nil, domainerrors.Precondition("merging needs at least two parts")
	}
	parts := make([]*domain.Part, 0, len(partIDs))
	for _, partID := range partIDs {
		part, err := tx.song.Part(partID)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	slices.SortStableFunc(parts, func(a, b *domain.Part) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})
	return parts, nil
}

func (tx *Tx) linesByStart(lineIDs []domain.LineID) ([]domain.LineID, error) {
	lineIDs = dedupe(lineIDs)
	if len(lineIDs) < 2 {
		return nil, domainerrors.Precondition("merging needs at least two lines")
	}
	starts := make(map[domain.LineID]int64, len(lineIDs))
	for _, lineID := range lineIDs {
		start, err := tx.song.LineStartTime(lineID)
		if err != nil {
			return nil, err
		}
		starts[lineID] = start
	}
	slices.SortStableFunc(lineIDs, func(a, b domain.LineID) int {
		return cmp.Compare(starts[a], starts[b])
	})
	return lineIDs, nil
}

func (tx *Tx) sectionsByStart(sectionIDs []domain.SectionID) ([]domain.SectionID, error) {
	sectionIDs = dedupe(sectionIDs)
	if len(sectionIDs) < 2 {
		return nil, domainerrors.Precondition("merging needs at least two sections")
	}
	starts := make(map[domain.SectionID]int64, len(sectionIDs))
	for _, sectionID := range sectionIDs {
		start, err := tx.song.SectionStartTime(sectionID)
		if err != nil {
			return nil, err
		}
		starts[sectionID] = start
	}
	slices.SortStableFunc(sectionIDs, func(a, b domain.SectionID) int {
		return cmp.Compare(starts[a], starts[b])
	})
	return sectionIDs, nil
}

// dedupe returns a copy of ids without repeats, keeping first occurrences.
func dedupe[T comparable](ids []T) []T {
	seen := make(map[T]struct{}, len(ids))
	out := make([]T, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
