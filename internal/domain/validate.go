package domain

import "fmt"

// Violation codes reported by Validate.
const (
	ViolationMissingEntity  = "missing_entity"
	ViolationBackReference  = "back_reference"
	ViolationMultipleParent = "multiple_parents"
	ViolationTiming         = "timing"
	ViolationDuplicateID    = "duplicate_id"
)

// Violation is one broken invariant found in a song.
type Violation struct {
	Code    string `json:"code"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Validate walks the song tree and reports every broken invariant:
// dangling ids, disagreeing back-references, children reachable from two
// parents, inverted or negative timings, and ids shared across entity kinds.
// An empty result means the song is consistent.
func Validate(s *Song) []Violation {
	var out []Violation
	report := func(code, id, format string, args ...any) {
		out = append(out, Violation{Code: code, ID: id, Message: fmt.Sprintf(format, args...)})
	}

	for id := range s.Content.Sections {
		if _, ok := s.Content.Lines[LineID(id)]; ok {
			report(ViolationDuplicateID, string(id), "id used by a section and a line")
		}
		if _, ok := s.Content.Parts[PartID(id)]; ok {
			report(ViolationDuplicateID, string(id), "id used by a section and a part")
		}
	}
	for id := range s.Content.Lines {
		if _, ok := s.Content.Parts[PartID(id)]; ok {
			report(ViolationDuplicateID, string(id), "id used by a line and a part")
		}
	}

	seenSections := make(map[SectionID]bool, len(s.SectionIDs))
	for _, sectionID := range s.SectionIDs {
		if seenSections[sectionID] {
			report(ViolationMultipleParent, string(sectionID), "section listed twice in song")
			continue
		}
		seenSections[sectionID] = true
		if _, ok := s.Content.Sections[sectionID]; !ok {
			report(ViolationMissingEntity, string(sectionID), "song references missing section")
		}
	}

	lineParent := make(map[LineID]SectionID)
	for sectionID, sec := range s.Content.Sections {
		for _, lineID := range sec.LinesIDs {
			line, ok := s.Content.Lines[lineID]
			if !ok {
				report(ViolationMissingEntity, string(lineID), "section %s references missing line", sectionID)
				continue
			}
			if prev, dup := lineParent[lineID]; dup {
				report(ViolationMultipleParent, string(lineID), "line listed by sections %s and %s", prev, sectionID)
				continue
			}
			lineParent[lineID] = sectionID
			if line.SectionID != sectionID {
				report(ViolationBackReference, string(lineID), "line points to section %q but is listed by %s", line.SectionID, sectionID)
			}
		}
	}

	partParent := make(map[PartID]LineID)
	for lineID, line := range s.Content.Lines {
		if line.SectionID != "" {
			if _, listed := lineParent[lineID]; !listed {
				report(ViolationBackReference, string(lineID), "line points to section %s which does not list it", line.SectionID)
			}
		}
		for _, partID := range line.PartsIDs {
			part, ok := s.Content.Parts[partID]
			if !ok {
				report(ViolationMissingEntity, string(partID), "line %s references missing part", lineID)
				continue
			}
			if prev, dup := partParent[partID]; dup {
				report(ViolationMultipleParent, string(partID), "part listed by lines %s and %s", prev, lineID)
				continue
			}
			partParent[partID] = lineID
			if part.LineID != lineID {
				report(ViolationBackReference, string(partID), "part points to line %q but is listed by %s", part.LineID, lineID)
			}
		}
	}

	for partID, part := range s.Content.Parts {
		if part.LineID != "" {
			if _, listed := partParent[partID]; !listed {
				report(ViolationBackReference, string(partID), "part points to line %s which does not list it", part.LineID)
			}
		}
		if part.StartTime < 0 || part.EndTime < 0 {
			report(ViolationTiming, string(partID), "negative timing %d-%d", part.StartTime, part.EndTime)
		}
		if part.EndTime < part.StartTime {
			report(ViolationTiming, string(partID), "end %d before start %d", part.EndTime, part.StartTime)
		}
	}

	return out
}
