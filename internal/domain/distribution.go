package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Assignee is a performer that parts can be distributed to.
type Assignee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Mapping assigns each part to zero or more assignee ids (performers or sentinels).
type Mapping map[PartID][]string

// Clone returns a deep copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for partID, ids := range m {
		out[partID] = cloneSlice(ids)
	}
	return out
}

// Distribution assigns the parts of one song to the performers of one group.
type Distribution struct {
	Syncable
	SongID    string              `json:"songId"`
	GroupID   string              `json:"groupId"`
	Name      string              `json:"name,omitempty"`
	Assignees map[string]Assignee `json:"assignees"`
	Mapping   Mapping             `json:"mapping"`
}

// NewDistribution creates an empty distribution for a song.
func NewDistribution(distributionID, songID, groupID string) *Distribution {
	d := &Distribution{
		SongID:    songID,
		GroupID:   groupID,
		Assignees: make(map[string]Assignee),
		Mapping:   Mapping{},
	}
	d.ID = distributionID
	d.InitTimestamps()
	return d
}

// Clone returns a deep copy.
func (d *Distribution) Clone() *Distribution {
	cp := *d
	cp.Assignees = make(map[string]Assignee, len(d.Assignees))
	for k, v := range d.Assignees {
		cp.Assignees[k] = v
	}
	cp.Mapping = d.Mapping.Clone()
	return &cp
}

// AssigneeIDs returns performer ids in their stable order (sorted).
// Formation position lists are index-aligned with this order.
func (d *Distribution) AssigneeIDs() []string {
	ids := make([]string, 0, len(d.Assignees))
	for id := range d.Assignees {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// AssigneeName resolves an assignee id to a display name.
// Sentinels resolve to themselves, unknown ids to the id.
func (d *Distribution) AssigneeName(assigneeID string) string {
	if a, ok := d.Assignees[assigneeID]; ok && a.Name != "" {
		return a.Name
	}
	return assigneeID
}

// Formation places performers on stage over the course of a song.
type Formation struct {
	Syncable
	SongID         string   `json:"songId"`
	DistributionID string   `json:"distributionId"`
	Timeline       Timeline `json:"timeline"`
}

// NewFormation creates a formation with an empty timeline.
func NewFormation(formationID, songID, distributionID string) *Formation {
	f := &Formation{
		SongID:         songID,
		DistributionID: distributionID,
		Timeline:       Timeline{},
	}
	f.ID = formationID
	f.InitTimestamps()
	return f
}

// Clone returns a copy whose timeline map can be replaced freely. Position
// lists are shared; timelines are edited clone-on-write.
func (f *Formation) Clone() *Formation {
	cp := *f
	cp.Timeline = make(Timeline, len(f.Timeline))
	for k, v := range f.Timeline {
		cp.Timeline[k] = v
	}
	return &cp
}

// Timeline maps a millisecond timestamp (as a decimal string) to "x::y"
// stage positions, index-aligned with Distribution.AssigneeIDs.
type Timeline map[string][]string

// PositionSeparator joins the coordinates of a stage position.
const PositionSeparator = "::"

// Position is a stage coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String encodes the position as "x::y".
func (p Position) String() string {
	return strconv.Itoa(p.X) + PositionSeparator + strconv.Itoa(p.Y)
}

// ParsePosition decodes an "x::y" position.
func ParsePosition(s string) (Position, bool) {
	xs, ys, ok := strings.Cut(s, PositionSeparator)
	if !ok {
		return Position{}, false
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Position{}, false
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}
