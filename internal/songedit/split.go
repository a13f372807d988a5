package songedit

import (
	"slices"
	"unicode/utf8"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// SplitPart replaces a part with consecutive parts, one per non-blank segment.
// The first segment keeps the original id; the rest are inserted right after
// it. A timed part's range is divided in proportion to each segment's length;
// an untimed part yields untimed parts. It returns the ids in order.
func (tx *Tx) SplitPart(partID domain.PartID, segments []string) ([]domain.PartID, error) {
	part, err := tx.song.Part(partID)
	if err != nil {
		return nil, err
	}
	segments = nonBlank(segments)
	if len(segments) < 2 {
		return nil, domainerrors.Precondition("splitting needs at least two non-blank segments")
	}
	line, err := tx.song.Line(part.LineID)
	if err != nil {
		return nil, domainerrors.Preconditionf("part %s is not on a line", partID)
	}

	bounds := splitRange(part.StartTime, part.EndTime, segments)
	part.Text = segments[0]
	part.EndTime = bounds[1]

	ids := []domain.PartID{partID}
	at := slices.Index(line.PartsIDs, partID) + 1
	for i, text := range segments[1:] {
		newID, err := tx.AddPart(line.ID, at+i, text)
		if err != nil {
			return nil, err
		}
		p := tx.song.Content.Parts[newID]
		p.StartTime = bounds[i+1]
		p.EndTime = bounds[i+2]
		p.RecommendedAssignee = part.RecommendedAssignee
		ids = append(ids, newID)
	}
	return ids, nil
}

// splitRange returns len(segments)+1 boundaries dividing [start, end) in
// proportion to the rune length of each segment.
func splitRange(start, end int64, segments []string) []int64 {
	lengths := make([]int64, len(segments))
	var total int64
	for i, s := range segments {
		lengths[i] = int64(utf8.RuneCountInString(s))
		total += lengths[i]
	}

	bounds := make([]int64, len(segments)+1)
	bounds[0] = start
	var acc int64
	for i, n := range lengths {
		acc += n
		bounds[i+1] = start + (end-start)*acc/total
	}
	bounds[len(segments)] = end
	return bounds
}

// SplitSection moves the lines from lineID onward into a new section of the
// same kind placed right after the original, then renumbers. It returns the
// new section's id.
func (tx *Tx) SplitSection(sectionID domain.SectionID, lineID domain.LineID) (domain.SectionID, error) {
	sec, err := tx.song.Section(sectionID)
	if err != nil {
		return "", err
	}
	idx := slices.Index(sec.LinesIDs, lineID)
	if idx < 0 {
		return "", domainerrors.Preconditionf("line %s is not in section %s", lineID, sectionID)
	}
	if idx == 0 {
		return "", domainerrors.Preconditionf("line %s is the first line of section %s", lineID, sectionID)
	}

	at := slices.Index(tx.song.SectionIDs, sectionID) + 1
	newID, err := tx.createSection(sec.Kind, at)
	if err != nil {
		return "", err
	}
	for _, moving := range slices.Clone(sec.LinesIDs[idx:]) {
		if err := tx.ConnectLine(moving, newID); err != nil {
			return "", err
		}
	}
	return newID, tx.RenumberSections()
}
