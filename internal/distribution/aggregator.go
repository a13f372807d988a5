// Package distribution derives playback data from a song and a distribution:
// per-performer progress bars, grouped lyric and adlib snapshots, and
// "up next" announcements. Everything here is a pure function of its inputs.
package distribution

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// Rate is the sampling interval in milliseconds. All snapshots are keyed by
// tick, where tick = milliseconds / Rate.
const Rate = 100

// UpNextLead is how many ticks ahead of a line its performers are announced.
const UpNextLead = 12

// Result bundles every snapshot computed for one (song, distribution) pair.
type Result struct {
	StartTick int64           `json:"startTick"`
	Bars      []BarSnapshot   `json:"bars"`
	Lyrics    []LyricSnapshot `json:"lyrics"`
	Adlibs    []AdlibSnapshot `json:"adlibs"`
	UpNext    []UpNextEntry   `json:"upNext"`
}

// Compute runs every aggregation over the song and distribution.
func Compute(song *domain.Song, dist *domain.Distribution) Result {
	bars := Bars(song, dist)
	lyrics, adlibs := Lyrics(song, dist)
	start, _ := tickRange(song)
	return Result{
		StartTick: start,
		Bars:      bars,
		Lyrics:    lyrics,
		Adlibs:    adlibs,
		UpNext:    UpNext(song, dist),
	}
}

// ToTick converts milliseconds to a tick.
func ToTick(ms int64) int64 {
	return ms / Rate
}

// tickRange returns the first tick and one past the last tick to sample.
// A song without a valid [startAt, endAt) window is sampled up to the end
// of its last part.
func tickRange(song *domain.Song) (int64, int64) {
	start, end := song.StartAt, song.EndAt
	if end <= start {
		start = 0
		for _, p := range song.Content.Parts {
			end = max(end, p.EndTime)
		}
	}
	return ToTick(start), ToTick(end)
}

// orderedLines returns every line reachable from the song's sections, sorted
// by start time. Lines starting together keep their song order.
func orderedLines(song *domain.Song) []*domain.Line {
	var lines []*domain.Line
	for _, sectionID := range song.SectionIDs {
		sec, ok := song.Content.Sections[sectionID]
		if !ok {
			continue
		}
		for _, lineID := range sec.LinesIDs {
			if line, ok := song.Content.Lines[lineID]; ok {
				lines = append(lines, line)
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b *domain.Line) int {
		return cmp.Compare(lineStart(song, a), lineStart(song, b))
	})
	return lines
}

func lineStart(song *domain.Song, line *domain.Line) int64 {
	start, _ := song.LineStartTime(line.ID)
	return start
}

// lineAssignees returns the sorted, de-duplicated assignee ids mapped to any
// part of the line, sentinels included.
func lineAssignees(song *domain.Song, dist *domain.Distribution, line *domain.Line) []string {
	var ids []string
	for _, partID := range line.PartsIDs {
		if _, ok := song.Content.Parts[partID]; !ok {
			continue
		}
		ids = append(ids, dist.Mapping[partID]...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// assigneeKey joins a sorted assignee set into a comparable key.
func assigneeKey(ids []string) string {
	return strings.Join(ids, ",")
}

// names resolves assignee ids to display names, keeping the first occurrence
// of each name.
func names(dist *domain.Distribution, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, assigneeID := range ids {
		name := dist.AssigneeName(assigneeID)
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
