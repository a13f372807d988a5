package songedit

import (
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// DeletePart disconnects a part from its line and removes it from the song.
func (tx *Tx) DeletePart(partID domain.PartID) error {
	if err := tx.DisconnectPart(partID); err != nil {
		return err
	}
	delete(tx.song.Content.Parts, partID)
	return nil
}

// DeleteLine removes an empty line. A line that still has parts is rejected
// with a precondition error.
func (tx *Tx) DeleteLine(lineID domain.LineID) error {
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	if len(line.PartsIDs) > 0 {
		return domainerrors.Preconditionf("line %s still has %d parts", lineID, len(line.PartsIDs))
	}
	if err := tx.DisconnectLine(lineID); err != nil {
		return err
	}
	delete(tx.song.Content.Lines, lineID)
	return nil
}

// DeleteSection removes an empty section. A section that still has lines is
// rejected with a precondition error; see DeleteSectionCascade.
func (tx *Tx) DeleteSection(sectionID domain.SectionID) error {
	sec, err := tx.song.Section(sectionID)
	if err != nil {
		return err
	}
	if len(sec.LinesIDs) > 0 {
		return domainerrors.Preconditionf("section %s still has %d lines", sectionID, len(sec.LinesIDs))
	}
	tx.song.SectionIDs = remove(tx.song.SectionIDs, sectionID)
	delete(tx.song.Content.Sections, sectionID)
	return nil
}

// DeleteSectionCascade removes a section together with all of its lines and
// their parts.
func (tx *Tx) DeleteSectionCascade(sectionID domain.SectionID) error {
	sec, err := tx.song.Section(sectionID)
	if err != nil {
		return err
	}
	for _, lineID := range append([]domain.LineID(nil), sec.LinesIDs...) {
		if err := tx.deleteLineCascade(lineID); err != nil {
			return err
		}
	}
	return tx.DeleteSection(sectionID)
}

func (tx *Tx) deleteLineCascade(lineID domain.LineID) error {
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	for _, partID := range append([]domain.PartID(nil), line.PartsIDs...) {
		if err := tx.DeletePart(partID); err != nil {
			return err
		}
	}
	return tx.DeleteLine(lineID)
}

// deleteIfEmpty removes a section left without lines.
func (tx *Tx) deleteIfEmpty(sectionID domain.SectionID) error {
	sec, ok := tx.song.Content.Sections[sectionID]
	if !ok || len(sec.LinesIDs) > 0 {
		return nil
	}
	return tx.DeleteSection(sectionID)
}
