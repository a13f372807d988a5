package songedit

import (
	"slices"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// MovePart moves a part onto another line and re-sorts that line.
func (tx *Tx) MovePart(partID domain.PartID, lineID domain.LineID) error {
	if _, err := tx.song.Part(partID); err != nil {
		return err
	}
	if _, ok := tx.song.Content.Lines[lineID]; !ok {
		return domainerrors.Preconditionf("target line %s does not exist", lineID)
	}
	if err := tx.ConnectPart(partID, lineID); err != nil {
		return err
	}
	return tx.SortLine(lineID)
}

// MoveLines moves lines into a section and re-sorts it. Source sections left
// without lines are deleted.
func (tx *Tx) MoveLines(sectionID domain.SectionID, lineIDs ...domain.LineID) error {
	if _, ok := tx.song.Content.Sections[sectionID]; !ok {
		return domainerrors.Preconditionf("target section %s does not exist", sectionID)
	}
	var sources []domain.SectionID
	for _, lineID := range lineIDs {
		line, err := tx.song.Line(lineID)
		if err != nil {
			return err
		}
		if line.SectionID != "" && line.SectionID != sectionID {
			sources = append(sources, line.SectionID)
		}
		if err := tx.ConnectLine(lineID, sectionID); err != nil {
			return err
		}
	}
	for _, source := range dedupe(sources) {
		if err := tx.deleteIfEmpty(source); err != nil {
			return err
		}
	}
	return tx.SortSection(sectionID)
}

// MoveSection moves a section to index to in the song order and renumbers.
func (tx *Tx) MoveSection(sectionID domain.SectionID, to int) error {
	from := slices.Index(tx.song.SectionIDs, sectionID)
	if from < 0 {
		return domainerrors.NotFoundf("section %s not found", sectionID)
	}
	if to < 0 || to >= len(tx.song.SectionIDs) {
		return domainerrors.Preconditionf("position %d out of range [0, %d)", to, len(tx.song.SectionIDs))
	}
	tx.song.SectionIDs = slices.Delete(tx.song.SectionIDs, from, from+1)
	tx.song.SectionIDs = slices.Insert(tx.song.SectionIDs, to, sectionID)
	return tx.RenumberSections()
}

// ConvertPartToLine takes a part out of its line and puts it on a new line,
// inserted right after the old one in the same section. It returns the new
// line's id.
func (tx *Tx) ConvertPartToLine(partID domain.PartID) (domain.LineID, error) {
	part, err := tx.song.Part(partID)
	if err != nil {
		return "", err
	}
	line, err := tx.song.Line(part.LineID)
	if err != nil {
		return "", domainerrors.Preconditionf("part %s is not on a line", partID)
	}
	sec, err := tx.song.Section(line.SectionID)
	if err != nil {
		return "", domainerrors.Preconditionf("line %s is not in a section", line.ID)
	}

	at := slices.Index(sec.LinesIDs, line.ID) + 1
	newLineID, err := tx.createLine(sec.ID, at)
	if err != nil {
		return "", err
	}
	if err := tx.ConnectPart(partID, newLineID); err != nil {
		return "", err
	}
	return newLineID, nil
}
