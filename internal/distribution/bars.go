package distribution

import (
	"cmp"
	"slices"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// Bar is one performer's progress at one tick. Durations are milliseconds.
// Duration leaves out adlib and dismissible lines; FullDuration counts all.
// Percentages are relative to the leading performer.
type Bar struct {
	AssigneeID     string `json:"assigneeId"`
	Rank           int    `json:"rank"`
	Active         bool   `json:"active"`
	Duration       int64  `json:"duration"`
	Percentage     int    `json:"percentage"`
	FullDuration   int64  `json:"fullDuration"`
	FullPercentage int    `json:"fullPercentage"`
	Done           bool   `json:"done"`
}

// BarSnapshot holds every performer's bar at one tick.
type BarSnapshot struct {
	Tick int64          `json:"tick"`
	Bars map[string]Bar `json:"bars"`
}

// Bars samples the song every Rate milliseconds and returns one snapshot per
// tick. Only performers in the distribution's roster get bars; sentinel
// assignees are ignored. A performer singing several parts in one tick is
// counted once for that tick.
func Bars(song *domain.Song, dist *domain.Distribution) []BarSnapshot {
	first, last := tickRange(song)
	if last <= first {
		return nil
	}

	index := tickIndex(song, first, last)
	roster := dist.AssigneeIDs()

	current := make(map[string]Bar, len(roster))
	for _, assigneeID := range roster {
		current[assigneeID] = Bar{AssigneeID: assigneeID}
	}
	rank(current)

	snapshots := make([]BarSnapshot, 0, last-first)
	for tick := first; tick < last; tick++ {
		next := make(map[string]Bar, len(current))
		for assigneeID, bar := range current {
			bar.Active = false
			next[assigneeID] = bar
		}

		counted := activeAt(song, dist, index[tick])
		if len(counted) > 0 {
			for assigneeID, countsForDuration := range counted {
				bar := next[assigneeID]
				bar.Active = true
				bar.FullDuration += Rate
				if countsForDuration {
					bar.Duration += Rate
				}
				next[assigneeID] = bar
			}
			rank(next)
		}

		snapshots = append(snapshots, BarSnapshot{Tick: tick, Bars: next})
		current = next
	}

	markDone(snapshots, roster)
	return snapshots
}

// tickIndex maps each tick in [first, last) to the parts covering it.
// A part [start, end) covers ticks start/Rate up to end/Rate - 1.
func tickIndex(song *domain.Song, first, last int64) map[int64][]domain.PartID {
	index := make(map[int64][]domain.PartID)
	for _, part := range song.Content.Parts {
		from := max(ToTick(part.StartTime), first)
		to := min(ToTick(part.EndTime), last)
		for tick := from; tick < to; tick++ {
			index[tick] = append(index[tick], part.ID)
		}
	}
	for tick := range index {
		slices.Sort(index[tick])
	}
	return index
}

// activeAt returns the roster performers active in the given parts, and
// whether any of their parts there counts toward Duration.
func activeAt(song *domain.Song, dist *domain.Distribution, partIDs []domain.PartID) map[string]bool {
	active := make(map[string]bool)
	for _, partID := range partIDs {
		part := song.Content.Parts[partID]
		line, ok := song.Content.Lines[part.LineID]
		countsForDuration := !ok || (!line.Adlib && !line.Dismissible)
		for _, assigneeID := range dist.Mapping[partID] {
			if domain.IsSentinelAssignee(assigneeID) {
				continue
			}
			if _, known := dist.Assignees[assigneeID]; !known {
				continue
			}
			active[assigneeID] = active[assigneeID] || countsForDuration
		}
	}
	return active
}

// rank recomputes percentages and ranks: descending FullDuration, ties by id.
func rank(bars map[string]Bar) {
	var maxDuration, maxFull int64
	ids := make([]string, 0, len(bars))
	for assigneeID, bar := range bars {
		maxDuration = max(maxDuration, bar.Duration)
		maxFull = max(maxFull, bar.FullDuration)
		ids = append(ids, assigneeID)
	}

	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(bars[b].FullDuration, bars[a].FullDuration); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	for i, assigneeID := range ids {
		bar := bars[assigneeID]
		bar.Rank = i + 1
		bar.Percentage = percentOf(bar.Duration, maxDuration)
		bar.FullPercentage = percentOf(bar.FullDuration, maxFull)
		bars[assigneeID] = bar
	}
}

// markDone flags, walking backwards, every tick after which a performer is
// never active again.
func markDone(snapshots []BarSnapshot, roster []string) {
	for _, assigneeID := range roster {
		activeLater := false
		for i := len(snapshots) - 1; i >= 0; i-- {
			bar := snapshots[i].Bars[assigneeID]
			bar.Done = !activeLater
			snapshots[i].Bars[assigneeID] = bar
			if bar.Active {
				activeLater = true
			}
		}
	}
}

// percentOf returns floor(v / of * 100), or 0 when of is 0.
func percentOf(v, of int64) int {
	if of <= 0 {
		return 0
	}
	return int(v * 100 / of)
}
