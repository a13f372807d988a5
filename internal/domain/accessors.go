package domain

import (
	"strconv"
	"strings"

	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// EmptyLineText is shown for a line without any text.
const EmptyLineText = "[empty line]"

// Completion statuses.
const (
	StatusComplete = "complete"
	StatusPending  = "pending"
)

// Section returns the section with the given id.
func (s *Song) Section(id SectionID) (*Section, error) {
	sec, ok := s.Content.Sections[id]
	if !ok {
		return nil, domainerrors.NotFoundf("section %s not found", id)
	}
	return sec, nil
}

// Line returns the line with the given id.
func (s *Song) Line(id LineID) (*Line, error) {
	line, ok := s.Content.Lines[id]
	if !ok {
		return nil, domainerrors.NotFoundf("line %s not found", id)
	}
	return line, nil
}

// Part returns the part with the given id.
func (s *Song) Part(id PartID) (*Part, error) {
	part, ok := s.Content.Parts[id]
	if !ok {
		return nil, domainerrors.NotFoundf("part %s not found", id)
	}
	return part, nil
}

// SectionOrEmpty is the bypass form of Section: a missing id yields an empty
// placeholder instead of an error, for rendering transient states.
func (s *Song) SectionOrEmpty(id SectionID) *Section {
	if sec, ok := s.Content.Sections[id]; ok {
		return sec
	}
	return &Section{ID: id, Kind: SectionKindNull, LinesIDs: []LineID{}}
}

// LineOrEmpty is the bypass form of Line.
func (s *Song) LineOrEmpty(id LineID) *Line {
	if line, ok := s.Content.Lines[id]; ok {
		return line
	}
	return &Line{ID: id, PartsIDs: []PartID{}}
}

// PartOrEmpty is the bypass form of Part.
func (s *Song) PartOrEmpty(id PartID) *Part {
	if part, ok := s.Content.Parts[id]; ok {
		return part
	}
	return &Part{ID: id, RecommendedAssignee: AssigneeUnassigned}
}

// LineText joins the text of the line's parts with spaces.
func (s *Song) LineText(id LineID) (string, error) {
	line, err := s.Line(id)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(line.PartsIDs))
	for _, partID := range line.PartsIDs {
		part, err := s.Part(partID)
		if err != nil {
			return "", err
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return EmptyLineText, nil
	}
	return strings.Join(texts, " "), nil
}

// LineStartTime returns the start time of the line's first part (0 when empty).
func (s *Song) LineStartTime(id LineID) (int64, error) {
	line, err := s.Line(id)
	if err != nil {
		return 0, err
	}
	if len(line.PartsIDs) == 0 {
		return 0, nil
	}
	part, err := s.Part(line.PartsIDs[0])
	if err != nil {
		return 0, err
	}
	return part.StartTime, nil
}

// LineEndTime returns the end time of the line's last part (0 when empty).
func (s *Song) LineEndTime(id LineID) (int64, error) {
	line, err := s.Line(id)
	if err != nil {
		return 0, err
	}
	if len(line.PartsIDs) == 0 {
		return 0, nil
	}
	part, err := s.Part(line.PartsIDs[len(line.PartsIDs)-1])
	if err != nil {
		return 0, err
	}
	return part.EndTime, nil
}

// LineDuration returns end - start of the line.
func (s *Song) LineDuration(id LineID) (int64, error) {
	start, err := s.LineStartTime(id)
	if err != nil {
		return 0, err
	}
	end, err := s.LineEndTime(id)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// SectionStartTime returns the start time of the section's first part.
func (s *Song) SectionStartTime(id SectionID) (int64, error) {
	sec, err := s.Section(id)
	if err != nil {
		return 0, err
	}
	if len(sec.LinesIDs) == 0 {
		return 0, nil
	}
	return s.LineStartTime(sec.LinesIDs[0])
}

// SectionEndTime returns the end time of the section's last part.
func (s *Song) SectionEndTime(id SectionID) (int64, error) {
	sec, err := s.Section(id)
	if err != nil {
		return 0, err
	}
	if len(sec.LinesIDs) == 0 {
		return 0, nil
	}
	return s.LineEndTime(sec.LinesIDs[len(sec.LinesIDs)-1])
}

// SectionDuration returns end - start of the section.
func (s *Song) SectionDuration(id SectionID) (int64, error) {
	start, err := s.SectionStartTime(id)
	if err != nil {
		return 0, err
	}
	end, err := s.SectionEndTime(id)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// SectionCompletion scores a section: it needs a kind and at least one line.
func (s *Song) SectionCompletion(id SectionID) (int, error) {
	sec, err := s.Section(id)
	if err != nil {
		return 0, err
	}
	return percentage(sectionCriteria(sec)), nil
}

// LineCompletion scores a line: it needs a section and at least one part.
func (s *Song) LineCompletion(id LineID) (int, error) {
	line, err := s.Line(id)
	if err != nil {
		return 0, err
	}
	return percentage(lineCriteria(line)), nil
}

// PartCompletion scores a part: it needs a positive duration, a recommended
// assignee, text, and a line.
func (s *Song) PartCompletion(id PartID) (int, error) {
	part, err := s.Part(id)
	if err != nil {
		return 0, err
	}
	return percentage(partCriteria(part)), nil
}

// Status maps a completion percentage to StatusComplete or StatusPending.
func Status(completion int) string {
	if completion == 100 {
		return StatusComplete
	}
	return StatusPending
}

// SectionDisplayName renders the section kind followed by its number label.
// A numeric label is shown as a Roman numeral, any other label as stored.
func (s *Song) SectionDisplayName(id SectionID) (string, error) {
	sec, err := s.Section(id)
	if err != nil {
		return "", err
	}
	return DisplayName(sec.Kind, sec.Number), nil
}

// DisplayName combines a section kind and number label, e.g. "CHORUS II.A".
func DisplayName(kind SectionKind, number string) string {
	label := number
	if n, err := strconv.Atoi(number); err == nil {
		label = ToRoman(n)
	}
	if label == "" {
		return string(kind)
	}
	return string(kind) + " " + label
}

// SongSummary aggregates the state of a whole song.
type SongSummary struct {
	Sections   int    `json:"sections"`
	Lines      int    `json:"lines"`
	Parts      int    `json:"parts"`
	Duration   int64  `json:"duration"`
	Completion int    `json:"completion"`
	Status     string `json:"status"`
}

// Summary counts the song's entities and scores its overall completion as
// the share of satisfied criteria across all entities.
func (s *Song) Summary() SongSummary {
	var total criteria
	for _, sec := range s.Content.Sections {
		total = total.add(sectionCriteria(sec))
	}
	for _, line := range s.Content.Lines {
		total = total.add(lineCriteria(line))
	}
	for _, part := range s.Content.Parts {
		total = total.add(partCriteria(part))
	}

	var duration int64
	if len(s.SectionIDs) > 0 {
		start, errStart := s.SectionStartTime(s.SectionIDs[0])
		end, errEnd := s.SectionEndTime(s.SectionIDs[len(s.SectionIDs)-1])
		if errStart == nil && errEnd == nil {
			duration = end - start
		}
	}

	completion := percentage(total)
	return SongSummary{
		Sections:   len(s.Content.Sections),
		Lines:      len(s.Content.Lines),
		Parts:      len(s.Content.Parts),
		Duration:   duration,
		Completion: completion,
		Status:     Status(completion),
	}
}

type criteria struct {
	met, total int
}

func (c criteria) add(o criteria) criteria {
	return criteria{met: c.met + o.met, total: c.total + o.total}
}

func (c *criteria) check(ok bool) {
	c.total++
	if ok {
		c.met++
	}
}

func percentage(c criteria) int {
	if c.total == 0 {
		return 0
	}
	return c.met * 100 / c.total
}

func sectionCriteria(sec *Section) criteria {
	var c criteria
	c.check(sec.Kind != SectionKindNull && sec.Kind != "")
	c.check(len(sec.LinesIDs) > 0)
	return c
}

func lineCriteria(line *Line) criteria {
	var c criteria
	c.check(line.SectionID != "")
	c.check(len(line.PartsIDs) > 0)
	return c
}

func partCriteria(part *Part) criteria {
	var c criteria
	c.check(part.Duration() > 0)
	c.check(part.RecommendedAssignee != "" && part.RecommendedAssignee != AssigneeUnassigned)
	c.check(strings.TrimSpace(part.Text) != "")
	c.check(part.LineID != "")
	return c
}
