package distribution

import (
	"slices"
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// splitSizes are the group sizes that get halved for display.
var splitSizes = map[int]bool{6: true, 10: true, 12: true}

// LyricEntry is one line shown inside a lyric snapshot.
type LyricEntry struct {
	Tick        int64         `json:"tick"`
	LineID      domain.LineID `json:"lineId"`
	Text        string        `json:"text"`
	AssigneeIDs []string      `json:"assigneeIds"`
	Names       []string      `json:"names"`
}

// LyricSnapshot groups consecutive lines sung by the same performers within
// one section, keyed by the tick of its first line.
type LyricSnapshot struct {
	Tick        int64            `json:"tick"`
	SectionID   domain.SectionID `json:"sectionId"`
	AssigneeIDs []string         `json:"assigneeIds"`
	Entries     []LyricEntry     `json:"entries"`
}

// AdlibSnapshot is a single adlib line, shown apart from the main lyrics.
type AdlibSnapshot struct {
	Tick        int64         `json:"tick"`
	LineID      domain.LineID `json:"lineId"`
	Text        string        `json:"text"`
	AssigneeIDs []string      `json:"assigneeIds"`
	Names       []string      `json:"names"`
}

// Lyrics walks the lines in start-time order and builds the lyric and adlib
// snapshots. Dismissible lines are skipped. Groups of exactly 6, 10 or 12
// lines are split in two halves.
func Lyrics(song *domain.Song, dist *domain.Distribution) ([]LyricSnapshot, []AdlibSnapshot) {
	var (
		snapshots []LyricSnapshot
		adlibs    []AdlibSnapshot
		lastKey   string
	)

	for _, line := range orderedLines(song) {
		if line.Dismissible {
			continue
		}
		text, _ := song.LineText(line.ID)
		ids := lineAssignees(song, dist, line)
		tick := ToTick(lineStart(song, line))

		if line.Adlib {
			adlibs = append(adlibs, AdlibSnapshot{
				Tick:        tick,
				LineID:      line.ID,
				Text:        stripParentheses(text),
				AssigneeIDs: ids,
				Names:       names(dist, ids),
			})
			continue
		}

		entry := LyricEntry{
			Tick:        tick,
			LineID:      line.ID,
			Text:        text,
			AssigneeIDs: ids,
			Names:       names(dist, ids),
		}
		key := string(line.SectionID) + "|" + assigneeKey(ids)
		if len(snapshots) > 0 && key == lastKey {
			last := &snapshots[len(snapshots)-1]
			last.Entries = append(last.Entries, entry)
			continue
		}
		snapshots = append(snapshots, LyricSnapshot{
			Tick:        tick,
			SectionID:   line.SectionID,
			AssigneeIDs: ids,
			Entries:     []LyricEntry{entry},
		})
		lastKey = key
	}

	return splitDense(snapshots), adlibs
}

// splitDense halves every snapshot whose entry count is in splitSizes. The
// second half is keyed by its own first entry.
func splitDense(snapshots []LyricSnapshot) []LyricSnapshot {
	out := make([]LyricSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if !splitSizes[len(s.Entries)] {
			out = append(out, s)
			continue
		}
		half := len(s.Entries) / 2
		second := s
		second.Tick = s.Entries[half].Tick
		second.Entries = s.Entries[half:]
		s.Entries = s.Entries[:half]
		out = append(out, s, second)
	}
	return out
}

// stripParentheses removes one pair of enclosing parentheses.
func stripParentheses(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		return strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// UpNextEntry announces the performers of upcoming lines ahead of time.
type UpNextEntry struct {
	Tick        int64    `json:"tick"`
	AssigneeIDs []string `json:"assigneeIds"`
	Names       []string `json:"names"`
}

// UpNext schedules each non-dismissible line's performers UpNextLead ticks
// before the line starts (never before tick 0). Consecutive lines with the
// same performers share one entry.
func UpNext(song *domain.Song, dist *domain.Distribution) []UpNextEntry {
	var (
		entries []UpNextEntry
		lastKey string
	)
	for _, line := range orderedLines(song) {
		if line.Dismissible {
			continue
		}
		ids := lineAssignees(song, dist, line)
		key := assigneeKey(ids)
		if len(entries) > 0 && key == lastKey {
			last := &entries[len(entries)-1]
			for _, name := range names(dist, ids) {
				if !slices.Contains(last.Names, name) {
					last.Names = append(last.Names, name)
				}
			}
			continue
		}
		entries = append(entries, UpNextEntry{
			Tick:        ToTick(max(0, lineStart(song, line)-UpNextLead*Rate)),
			AssigneeIDs: ids,
			Names:       names(dist, ids),
		})
		lastKey = key
	}
	return entries
}
