package songedit

import (
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// LineUpdate lists the line fields to change; nil fields are left alone.
type LineUpdate struct {
	Skill       *domain.Skill
	ClearSkill  bool
	Adlib       *bool
	Dismissible *bool
}

// PartUpdate lists the part fields to change; nil fields are left alone.
type PartUpdate struct {
	Text                *string
	StartTime           *int64
	EndTime             *int64
	RecommendedAssignee *string
}

// UpdateSectionKind changes a section's kind and renumbers the song.
func (tx *Tx) UpdateSectionKind(sectionID domain.SectionID, kind domain.SectionKind) error {
	sec, err := tx.song.Section(sectionID)
	if err != nil {
		return err
	}
	if !kind.IsValid() {
		return domainerrors.Validationf("unknown section kind %q", kind)
	}
	sec.Kind = kind
	return tx.RenumberSections()
}

// UpdateLine applies a LineUpdate.
func (tx *Tx) UpdateLine(lineID domain.LineID, u LineUpdate) error {
	line, err := tx.song.Line(lineID)
	if err != nil {
		return err
	}
	if u.Skill != nil {
		if err := validateSkill(*u.Skill); err != nil {
			return err
		}
		skill := *u.Skill
		line.Skill = &skill
	}
	if u.ClearSkill {
		line.Skill = nil
	}
	if u.Adlib != nil {
		line.Adlib = *u.Adlib
	}
	if u.Dismissible != nil {
		line.Dismissible = *u.Dismissible
	}
	return nil
}

// UpdatePart applies a PartUpdate. The resulting timing must satisfy
// 0 <= startTime <= endTime.
func (tx *Tx) UpdatePart(partID domain.PartID, u PartUpdate) error {
	part, err := tx.song.Part(partID)
	if err != nil {
		return err
	}
	start, end := part.StartTime, part.EndTime
	if u.StartTime != nil {
		start = *u.StartTime
	}
	if u.EndTime != nil {
		end = *u.EndTime
	}
	if err := validateTiming(start, end); err != nil {
		return err
	}

	part.StartTime, part.EndTime = start, end
	if u.Text != nil {
		part.Text = *u.Text
	}
	if u.RecommendedAssignee != nil {
		part.RecommendedAssignee = *u.RecommendedAssignee
	}
	return nil
}

func validateSkill(s domain.Skill) error {
	switch s.Type {
	case domain.SkillVocal, domain.SkillRap, domain.SkillHighNote, domain.SkillChoir, domain.SkillDance:
	default:
		return domainerrors.Validationf("unknown skill type %q", s.Type)
	}
	if s.Level < domain.MinSkillLevel || s.Level > domain.MaxSkillLevel {
		return domainerrors.Validationf("skill level %d out of range [%d, %d]", s.Level, domain.MinSkillLevel, domain.MaxSkillLevel)
	}
	return nil
}

func validateTiming(start, end int64) error {
	if start < 0 || end < 0 {
		return domainerrors.Validationf("timing %d-%d is negative", start, end)
	}
	if end < start {
		return domainerrors.Validationf("end time %d is before start time %d", end, start)
	}
	return nil
}
