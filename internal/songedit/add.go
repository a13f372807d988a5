package songedit

import (
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	"github.com/lyricsplit/lyricsplit-server/internal/id"
	"github.com/lyricsplit/lyricsplit-server/internal/lyrics"
)

// AddSection creates a section of the given kind at position at in the song
// and seeds it with one empty line holding one empty part.
func (tx *Tx) AddSection(kind domain.SectionKind, at int) (domain.SectionID, error) {
	sectionID, err := tx.createSection(kind, at)
	if err != nil {
		return "", err
	}
	if _, err := tx.AddLine(sectionID, Append); err != nil {
		return "", err
	}
	return sectionID, nil
}

// AddLine creates a line at position at in the section and seeds it with one
// empty part.
func (tx *Tx) AddLine(sectionID domain.SectionID, at int) (domain.LineID, error) {
	lineID, err := tx.createLine(sectionID, at)
	if err != nil {
		return "", err
	}
	if _, err := tx.AddPart(lineID, Append, ""); err != nil {
		return "", err
	}
	return lineID, nil
}

// AddPart creates an untimed, unassigned part with the given text at position
// at in the line.
func (tx *Tx) AddPart(lineID domain.LineID, at int, text string) (domain.PartID, error) {
	if _, err := tx.song.Line(lineID); err != nil {
		return "", err
	}
	partID, err := tx.newPartID()
	if err != nil {
		return "", err
	}
	tx.song.Content.Parts[partID] = &domain.Part{
		ID:                  partID,
		Text:                text,
		RecommendedAssignee: domain.AssigneeUnassigned,
	}
	if err := tx.connectPart(partID, lineID, at); err != nil {
		return "", err
	}
	return partID, nil
}

func (tx *Tx) createSection(kind domain.SectionKind, at int) (domain.SectionID, error) {
	if kind == "" {
		kind = domain.SectionKindNull
	}
	sectionID, err := tx.newSectionID()
	if err != nil {
		return "", err
	}
	tx.song.Content.Sections[sectionID] = &domain.Section{
		ID:       sectionID,
		Kind:     kind,
		LinesIDs: []domain.LineID{},
	}
	tx.song.SectionIDs = insertAt(tx.song.SectionIDs, at, sectionID)
	return sectionID, nil
}

func (tx *Tx) createLine(sectionID domain.SectionID, at int) (domain.LineID, error) {
	if _, err := tx.song.Section(sectionID); err != nil {
		return "", err
	}
	lineID, err := tx.newLineID()
	if err != nil {
		return "", err
	}
	tx.song.Content.Lines[lineID] = &domain.Line{
		ID:       lineID,
		PartsIDs: []domain.PartID{},
	}
	if err := tx.connectLine(lineID, sectionID, at); err != nil {
		return "", err
	}
	return lineID, nil
}

// AddBlocks appends one section per parsed block, one line per block line and
// one part per segment. It returns the new section ids in order.
func (tx *Tx) AddBlocks(blocks []lyrics.Block) ([]domain.SectionID, error) {
	sectionIDs := make([]domain.SectionID, 0, len(blocks))
	for _, block := range blocks {
		sectionID, err := tx.createSection(block.Kind, Append)
		if err != nil {
			return nil, err
		}
		if _, err := tx.AppendLines(sectionID, block.Lines); err != nil {
			return nil, err
		}
		sectionIDs = append(sectionIDs, sectionID)
	}
	return sectionIDs, nil
}

// AppendLines adds one line per entry to the end of a section, one part per
// non-blank segment. Entries without any segment are skipped.
func (tx *Tx) AppendLines(sectionID domain.SectionID, lines [][]string) ([]domain.LineID, error) {
	if _, err := tx.song.Section(sectionID); err != nil {
		return nil, err
	}
	var lineIDs []domain.LineID
	for _, segments := range lines {
		if len(nonBlank(segments)) == 0 {
			continue
		}
		lineID, err := tx.createLine(sectionID, Append)
		if err != nil {
			return nil, err
		}
		if _, err := tx.AppendParts(lineID, segments); err != nil {
			return nil, err
		}
		lineIDs = append(lineIDs, lineID)
	}
	return lineIDs, nil
}

// AppendParts adds one part per non-blank segment to the end of a line.
func (tx *Tx) AppendParts(lineID domain.LineID, segments []string) ([]domain.PartID, error) {
	if _, err := tx.song.Line(lineID); err != nil {
		return nil, err
	}
	var partIDs []domain.PartID
	for _, text := range nonBlank(segments) {
		partID, err := tx.AddPart(lineID, Append, text)
		if err != nil {
			return nil, err
		}
		partIDs = append(partIDs, partID)
	}
	return partIDs, nil
}

// AppendText parses lyric text and adds it to the song as new sections.
func (tx *Tx) AppendText(text string) ([]domain.SectionID, error) {
	return tx.AddBlocks(lyrics.ParseSong(text))
}

// NewSongFromText builds a song from lyric text and numbers its sections.
func NewSongFromText(songID, title, text string, ids *id.Registry) (*domain.Song, error) {
	return Edit(domain.NewSong(songID, title), ids, func(tx *Tx) error {
		if _, err := tx.AppendText(text); err != nil {
			return err
		}
		return tx.RenumberSections()
	})
}

func nonBlank(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
