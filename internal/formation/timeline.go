// Package formation edits formation timelines: stage positions per timestamp,
// index-aligned with a distribution's performers.
//
// A domain.Timeline is treated as an immutable value. Every operation returns
// a new timeline that shares all untouched position lists with its input.
package formation

import (
	"slices"
	"strconv"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// DefaultSpacing is the distance between performers in a default line-up.
const DefaultSpacing = 2

// Key encodes a millisecond timestamp as a timeline key.
func Key(ms int64) string {
	return strconv.FormatInt(ms, 10)
}

// ParseKey decodes a timeline key.
func ParseKey(key string) (int64, error) {
	ms, err := strconv.ParseInt(key, 10, 64)
	if err != nil || ms < 0 {
		return 0, domainerrors.Validationf("timestamp %q is not a non-negative integer", key)
	}
	return ms, nil
}

// Timestamps returns the timeline's timestamps in ascending numeric order.
// Keys that are not numbers are skipped.
func Timestamps(tl domain.Timeline) []int64 {
	out := make([]int64, 0, len(tl))
	for key := range tl {
		if ms, err := ParseKey(key); err == nil {
			out = append(out, ms)
		}
	}
	slices.Sort(out)
	return out
}

// Next returns the first timestamp after ms.
func Next(tl domain.Timeline, ms int64) (int64, bool) {
	for _, ts := range Timestamps(tl) {
		if ts > ms {
			return ts, true
		}
	}
	return 0, false
}

// Previous returns the last timestamp before ms.
func Previous(tl domain.Timeline, ms int64) (int64, bool) {
	stamps := Timestamps(tl)
	for i := len(stamps) - 1; i >= 0; i-- {
		if stamps[i] < ms {
			return stamps[i], true
		}
	}
	return 0, false
}

// DefaultPositions lines up count performers along the x axis, centered on 0.
func DefaultPositions(count int) []string {
	out := make([]string, count)
	for i := range count {
		x := (i - (count-1)/2) * DefaultSpacing
		out[i] = domain.Position{X: x, Y: 0}.String()
	}
	return out
}

// shallowCopy copies the map; position lists stay shared.
func shallowCopy(tl domain.Timeline) domain.Timeline {
	out := make(domain.Timeline, len(tl)+1)
	for k, v := range tl {
		out[k] = v
	}
	return out
}

// UpdatePosition sets one performer's position at one timestamp. Only that
// timestamp's list is copied. A list shorter than index is padded with
// default positions.
func UpdatePosition(tl domain.Timeline, ms int64, index int, pos domain.Position) (domain.Timeline, error) {
	key := Key(ms)
	current, ok := tl[key]
	if !ok {
		return nil, domainerrors.NotFoundf("timestamp %d not found", ms)
	}
	if index < 0 {
		return nil, domainerrors.Validationf("performer index %d is negative", index)
	}

	size := max(len(current), index+1)
	positions := DefaultPositions(size)
	copy(positions, current)
	positions[index] = pos.String()

	out := shallowCopy(tl)
	out[key] = positions
	return out, nil
}

// Realign reorders every position list from the performer order before to the
// order after. Performers only in after get their default line-up slot;
// performers only in before are dropped.
func Realign(tl domain.Timeline, before, after []string) domain.Timeline {
	if slices.Equal(before, after) {
		return tl
	}
	oldIndex := make(map[string]int, len(before))
	for i, assigneeID := range before {
		oldIndex[assigneeID] = i
	}

	out := make(domain.Timeline, len(tl))
	for key, current := range tl {
		positions := DefaultPositions(len(after))
		for j, assigneeID := range after {
			if i, ok := oldIndex[assigneeID]; ok && i < len(current) {
				positions[j] = current[i]
			}
		}
		out[key] = positions
	}
	return out
}

// Rekey moves a timestamp's positions to another timestamp.
func Rekey(tl domain.Timeline, from, to int64) (domain.Timeline, error) {
	positions, ok := tl[Key(from)]
	if !ok {
		return nil, domainerrors.NotFoundf("timestamp %d not found", from)
	}
	if from == to {
		return tl, nil
	}
	if _, taken := tl[Key(to)]; taken {
		return nil, domainerrors.Conflictf("timestamp %d already exists", to)
	}
	if to < 0 {
		return nil, domainerrors.Validationf("timestamp %d is negative", to)
	}

	out := shallowCopy(tl)
	delete(out, Key(from))
	out[Key(to)] = positions
	return out, nil
}

// Delete removes a timestamp.
func Delete(tl domain.Timeline, ms int64) (domain.Timeline, error) {
	if _, ok := tl[Key(ms)]; !ok {
		return nil, domainerrors.NotFoundf("timestamp %d not found", ms)
	}
	out := shallowCopy(tl)
	delete(out, Key(ms))
	return out, nil
}

// Insert adds a timestamp holding a copy of the positions at the closest
// earlier timestamp, or a default line-up of performers when there is none.
func Insert(tl domain.Timeline, ms int64, performers int) (domain.Timeline, error) {
	if ms < 0 {
		return nil, domainerrors.Validationf("timestamp %d is negative", ms)
	}
	if _, taken := tl[Key(ms)]; taken {
		return nil, domainerrors.Conflictf("timestamp %d already exists", ms)
	}

	positions := DefaultPositions(performers)
	if prev, ok := Previous(tl, ms); ok {
		positions = slices.Clone(tl[Key(prev)])
	}

	out := shallowCopy(tl)
	out[Key(ms)] = positions
	return out, nil
}

// Clipboard holds one copied position list.
type Clipboard struct {
	positions []string
	full      bool
}

// Copy stores the positions at ms.
func (c *Clipboard) Copy(tl domain.Timeline, ms int64) error {
	positions, ok := tl[Key(ms)]
	if !ok {
		return domainerrors.NotFoundf("timestamp %d not found", ms)
	}
	c.positions = slices.Clone(positions)
	c.full = true
	return nil
}

// Empty reports whether nothing was copied yet.
func (c *Clipboard) Empty() bool {
	return !c.full
}

// Paste overwrites the positions at ms with the clipboard, creating the
// timestamp if needed.
func (c *Clipboard) Paste(tl domain.Timeline, ms int64) (domain.Timeline, error) {
	if !c.full {
		return nil, domainerrors.Precondition("clipboard is empty")
	}
	if ms < 0 {
		return nil, domainerrors.Validationf("timestamp %d is negative", ms)
	}
	out := shallowCopy(tl)
	out[Key(ms)] = slices.Clone(c.positions)
	return out, nil
}
