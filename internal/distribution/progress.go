package distribution

import (
	"cmp"
	"slices"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// AssigneeProgress is one performer's share of an in-progress mapping.
type AssigneeProgress struct {
	AssigneeID string `json:"assigneeId"`
	Name       string `json:"name"`
	Duration   int64  `json:"duration"`
	Percentage int    `json:"percentage"`
	Parts      int    `json:"parts"`
}

// Progress summarizes an in-progress mapping for the assignment sidebar.
// Performers are ordered by descending duration. ALL and NONE parts are
// tallied in their own buckets and do not count toward any performer.
type Progress struct {
	Assignees []AssigneeProgress `json:"assignees"`
	All       AssigneeProgress   `json:"all"`
	None      AssigneeProgress   `json:"none"`
}

// LiveProgress adds up the duration of every mapped part per performer.
// Parts on dismissible lines are left out.
func LiveProgress(song *domain.Song, assignees map[string]domain.Assignee, mapping domain.Mapping) Progress {
	roster := &domain.Distribution{Assignees: assignees}

	totals := make(map[string]*AssigneeProgress, len(assignees))
	for assigneeID := range assignees {
		totals[assigneeID] = &AssigneeProgress{AssigneeID: assigneeID, Name: roster.AssigneeName(assigneeID)}
	}
	all := AssigneeProgress{AssigneeID: domain.AssigneeAll, Name: domain.AssigneeAll}
	none := AssigneeProgress{AssigneeID: domain.AssigneeNone, Name: domain.AssigneeNone}

	for partID, ids := range mapping {
		part, ok := song.Content.Parts[partID]
		if !ok {
			continue
		}
		if line, ok := song.Content.Lines[part.LineID]; ok && line.Dismissible {
			continue
		}
		for _, assigneeID := range ids {
			var bucket *AssigneeProgress
			switch assigneeID {
			case domain.AssigneeAll:
				bucket = &all
			case domain.AssigneeNone:
				bucket = &none
			default:
				bucket = totals[assigneeID]
			}
			if bucket == nil {
				continue
			}
			bucket.Duration += part.Duration()
			bucket.Parts++
		}
	}

	var maxDuration int64
	for _, t := range totals {
		maxDuration = max(maxDuration, t.Duration)
	}

	out := Progress{Assignees: make([]AssigneeProgress, 0, len(totals))}
	for _, t := range totals {
		t.Percentage = percentOf(t.Duration, maxDuration)
		out.Assignees = append(out.Assignees, *t)
	}
	slices.SortFunc(out.Assignees, func(a, b AssigneeProgress) int {
		if c := cmp.Compare(b.Duration, a.Duration); c != 0 {
			return c
		}
		return cmp.Compare(a.AssigneeID, b.AssigneeID)
	})

	all.Percentage = percentOf(all.Duration, maxDuration)
	none.Percentage = percentOf(none.Duration, maxDuration)
	out.All, out.None = all, none
	return out
}

// Completeness reports how much of a song a distribution covers.
type Completeness struct {
	TotalParts      int             `json:"totalParts"`
	AssignedParts   int             `json:"assignedParts"`
	Percentage      int             `json:"percentage"`
	UnassignedParts []domain.PartID `json:"unassignedParts"`
	PartsByAssignee map[string]int  `json:"partsByAssignee"`
}

// CheckCompleteness lists the parts with no assignee and counts the parts
// mapped to each assignee id, sentinels included.
func CheckCompleteness(song *domain.Song, dist *domain.Distribution) Completeness {
	c := Completeness{
		TotalParts:      len(song.Content.Parts),
		UnassignedParts: []domain.PartID{},
		PartsByAssignee: make(map[string]int),
	}
	for partID := range song.Content.Parts {
		ids := dist.Mapping[partID]
		if len(ids) == 0 {
			c.UnassignedParts = append(c.UnassignedParts, partID)
			continue
		}
		c.AssignedParts++
		for _, assigneeID := range ids {
			c.PartsByAssignee[assigneeID]++
		}
	}
	slices.Sort(c.UnassignedParts)
	c.Percentage = percentOf(int64(c.AssignedParts), int64(c.TotalParts))
	return c
}
