package songedit

import (
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// RenumberSections labels sections by their position among sections of the
// same kind. Consecutive sections of one kind form a run; each run of a kind
// gets the next Roman numeral, and sections inside a run longer than one get
// letter suffixes. A kind that occurs once in the song gets no label:
//
//	VERSE, CHORUS, VERSE, CHORUS, CHORUS, BRIDGE
//	I      I       II     II.A    II.B    ""
//
// Nothing changes while any section still has the NULL kind.
func (tx *Tx) RenumberSections() error {
	sections := make([]*domain.Section, 0, len(tx.song.SectionIDs))
	counts := make(map[domain.SectionKind]int)
	for _, sectionID := range tx.song.SectionIDs {
		sec, err := tx.song.Section(sectionID)
		if err != nil {
			return err
		}
		if sec.Kind == domain.SectionKindNull || sec.Kind == "" {
			return nil
		}
		counts[sec.Kind]++
		sections = append(sections, sec)
	}

	runs := make(map[domain.SectionKind]int)
	for start := 0; start < len(sections); {
		kind := sections[start].Kind
		end := start + 1
		for end < len(sections) && sections[end].Kind == kind {
			end++
		}

		if counts[kind] == 1 {
			sections[start].Number = ""
			start = end
			continue
		}

		runs[kind]++
		numeral := domain.ToRoman(runs[kind])
		if end-start == 1 {
			sections[start].Number = numeral
		} else {
			for i := start; i < end; i++ {
				sections[i].Number = numeral + "." + letters(i-start)
			}
		}
		start = end
	}
	return nil
}

// letters renders 0, 1, ... 25, 26 as A, B, ... Z, AA.
func letters(n int) string {
	s := ""
	for n >= 0 {
		s = string(rune('A'+n%26)) + s
		n = n/26 - 1
	}
	return s
}
