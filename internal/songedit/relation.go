package songedit

import (
	"slices"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// Relations are always updated on both sides in one call: the child's
// back-reference and the parent's ordered id list never disagree.

// ConnectPart attaches a part to the end of a line, detaching it from any
// previous line first. Connecting to the current line is a no-op.
func (tx *Tx) ConnectPart(partID domain.PartID, lineID domain.LineID) error {
	return tx.connectPart(partID, lineID, Append)
}

func (tx *Tx) connectPart(partID domain.PartID, lineID domain.LineID, at int) error {
	part, err := tx.song.Part(partID)
	if err != nil {
		return err
	}
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	if part.LineID != "" && part.LineID != lineID {
		if err := tx.DisconnectPart(partID); err != nil {
			return err
		}
	}
	part.LineID = lineID
	if !slices.Contains(line.PartsIDs, partID) {
		line.PartsIDs = insertAt(line.PartsIDs, at, partID)
	}
	return nil
}

// DisconnectPart detaches a part from its line and clears its back-reference.
// A part whose line no longer exists is simply cleared.
func (tx *Tx) DisconnectPart(partID domain.PartID) error {
	part, err := tx.song.Part(partID)
	if err != nil {
		return err
	}
	if line, ok := tx.song.Content.Lines[part.LineID]; ok {
		line.PartsIDs = remove(line.PartsIDs, partID)
	}
	part.LineID = ""
	return nil
}

// ConnectLine attaches a line to the end of a section, detaching it from any
// previous section first.
func (tx *Tx) ConnectLine(lineID domain.LineID, sectionID domain.SectionID) error {
	return tx.connectLine(lineID, sectionID, Append)
}

func (tx *Tx) connectLine(lineID domain.LineID, sectionID domain.SectionID, at int) error {
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	sec, err := tx.song.Section(sectionID)
	if err != nil {
		return err
	}
	if line.SectionID != "" && line.SectionID != sectionID {
		if err := tx.DisconnectLine(lineID); err != nil {
			return err
		}
	}
	line.SectionID = sectionID
	if !slices.Contains(sec.LinesIDs, lineID) {
		sec.LinesIDs = insertAt(sec.LinesIDs, at, lineID)
	}
	return nil
}

// DisconnectLine detaches a line from its section and clears its back-reference.
func (tx *Tx) DisconnectLine(lineID domain.LineID) error {
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	if sec, ok := tx.song.Content.Sections[line.SectionID]; ok {
		sec.LinesIDs = remove(sec.LinesIDs, lineID)
	}
	line.SectionID = ""
	return nil
}
