// Package domain contains the song content model: songs split into sections,
// lines and parts, the distributions that assign parts to performers, and the
// formations that place performers on stage over time.
package domain

// Entity id prefixes. Content ids look like "_s4k2j9x", "_l0ab12c", "_p9zz01q".
const (
	SectionPrefix = "s"
	LinePrefix    = "l"
	PartPrefix    = "p"
)

// SectionID identifies a Section within a song's content.
type SectionID string

// LineID identifies a Line within a song's content.
type LineID string

// PartID identifies a Part within a song's content.
type PartID string

// EntityKind discriminates the entities stored in a song's content.
type EntityKind string

// Content entity kinds.
const (
	EntitySection EntityKind = "section"
	EntityLine    EntityKind = "line"
	EntityPart    EntityKind = "part"
)

// SectionKind tags what a section is in the song structure.
type SectionKind string

// Section kinds. SectionKindNull marks a section whose kind was never assigned.
const (
	SectionKindNull       SectionKind = "NULL"
	SectionKindIntro      SectionKind = "INTRO"
	SectionKindVerse      SectionKind = "VERSE"
	SectionKindPreChorus  SectionKind = "PRE_CHORUS"
	SectionKindChorus     SectionKind = "CHORUS"
	SectionKindPostChorus SectionKind = "POST_CHORUS"
	SectionKindHook       SectionKind = "HOOK"
	SectionKindBridge     SectionKind = "BRIDGE"
	SectionKindRap        SectionKind = "RAP"
	SectionKindBreak      SectionKind = "BREAK"
	SectionKindDrop       SectionKind = "DROP"
	SectionKindSpecial    SectionKind = "SPECIAL"
	SectionKindOutro      SectionKind = "OUTRO"
)

// SectionKinds lists every assignable kind, in the order a picker shows them.
var SectionKinds = []SectionKind{
	SectionKindIntro,
	SectionKindVerse,
	SectionKindPreChorus,
	SectionKindChorus,
	SectionKindPostChorus,
	SectionKindHook,
	SectionKindBridge,
	SectionKindRap,
	SectionKindBreak,
	SectionKindDrop,
	SectionKindSpecial,
	SectionKindOutro,
}

// IsValid reports whether k is a known kind (including NULL).
func (k SectionKind) IsValid() bool {
	if k == SectionKindNull {
		return true
	}
	for _, known := range SectionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// SkillType categorizes what a line demands from whoever sings it.
type SkillType string

// Skill types.
const (
	SkillVocal    SkillType = "VOCAL"
	SkillRap      SkillType = "RAP"
	SkillHighNote SkillType = "HIGH_NOTE"
	SkillChoir    SkillType = "CHOIR"
	SkillDance    SkillType = "DANCE"
)

// Skill levels range from MinSkillLevel to MaxSkillLevel.
const (
	MinSkillLevel = 1
	MaxSkillLevel = 3
)

// Skill describes the difficulty of a line.
type Skill struct {
	Type  SkillType `json:"type"`
	Level int       `json:"level"`
}

// Assignee sentinels.
const (
	// AssigneeUnassigned is the default recommended assignee of a part.
	AssigneeUnassigned = "UNASSIGNED"
	// AssigneeAll maps a part to every performer.
	AssigneeAll = "ALL"
	// AssigneeNone maps a part to nobody (instrumental, effects).
	AssigneeNone = "NONE"
)

// IsSentinelAssignee reports whether id is one of the assignee sentinels rather than a performer.
func IsSentinelAssignee(id string) bool {
	return id == AssigneeAll || id == AssigneeNone || id == AssigneeUnassigned
}

// Section is a structural unit of a song (verse, chorus, ...) holding ordered lines.
type Section struct {
	ID       SectionID   `json:"id"`
	Kind     SectionKind `json:"kind"`
	Number   string      `json:"number"`
	LinesIDs []LineID    `json:"linesIds"`
}

// Line is a lyrical unit within a section, holding ordered parts.
type Line struct {
	ID          LineID    `json:"id"`
	SectionID   SectionID `json:"sectionId"`
	PartsIDs    []PartID  `json:"partsIds"`
	Skill       *Skill    `json:"skill,omitempty"`
	Adlib       bool      `json:"adlib,omitempty"`
	Dismissible bool      `json:"dismissible,omitempty"`
}

// Part is the smallest timed lyric fragment. Times are milliseconds relative to the video start.
type Part struct {
	ID                  PartID `json:"id"`
	LineID              LineID `json:"lineId"`
	Text                string `json:"text"`
	StartTime           int64  `json:"startTime"`
	EndTime             int64  `json:"endTime"`
	RecommendedAssignee string `json:"recommendedAssignee"`
}

// Duration returns EndTime - StartTime.
func (p *Part) Duration() int64 {
	return p.EndTime - p.StartTime
}

// IsTimed reports whether the part carries timing; untimed parts have both times at 0.
func (p *Part) IsTimed() bool {
	return p.StartTime != 0 || p.EndTime != 0
}

// Content holds every section, line and part of a song, keyed by id.
// Ids are unique across all three maps.
type Content struct {
	Sections map[SectionID]*Section
	Lines    map[LineID]*Line
	Parts    map[PartID]*Part
}

// NewContent returns empty, ready-to-use content.
func NewContent() Content {
	return Content{
		Sections: make(map[SectionID]*Section),
		Lines:    make(map[LineID]*Line),
		Parts:    make(map[PartID]*Part),
	}
}

// Len returns the total number of entities.
func (c Content) Len() int {
	return len(c.Sections) + len(c.Lines) + len(c.Parts)
}

// Has reports whether any entity uses the raw id.
func (c Content) Has(rawID string) bool {
	if _, ok := c.Sections[SectionID(rawID)]; ok {
		return true
	}
	if _, ok := c.Lines[LineID(rawID)]; ok {
		return true
	}
	_, ok := c.Parts[PartID(rawID)]
	return ok
}

// IDs returns every entity id as a plain string.
func (c Content) IDs() []string {
	ids := make([]string, 0, c.Len())
	for id := range c.Sections {
		ids = append(ids, string(id))
	}
	for id := range c.Lines {
		ids = append(ids, string(id))
	}
	for id := range c.Parts {
		ids = append(ids, string(id))
	}
	return ids
}

// Clone returns a deep copy.
func (c Content) Clone() Content {
	out := Content{
		Sections: make(map[SectionID]*Section, len(c.Sections)),
		Lines:    make(map[LineID]*Line, len(c.Lines)),
		Parts:    make(map[PartID]*Part, len(c.Parts)),
	}
	for id, s := range c.Sections {
		cp := *s
		cp.LinesIDs = cloneSlice(s.LinesIDs)
		out.Sections[id] = &cp
	}
	for id, l := range c.Lines {
		cp := *l
		cp.PartsIDs = cloneSlice(l.PartsIDs)
		if l.Skill != nil {
			skill := *l.Skill
			cp.Skill = &skill
		}
		out.Lines[id] = &cp
	}
	for id, p := range c.Parts {
		cp := *p
		out.Parts[id] = &cp
	}
	return out
}

// Song is the aggregate root of the content model.
type Song struct {
	Syncable
	Title      string      `json:"title"`
	Artist     string      `json:"artist,omitempty"`
	VideoID    string      `json:"videoId,omitempty"`
	GroupID    string      `json:"groupId,omitempty"`
	SectionIDs []SectionID `json:"sectionIds"`
	Content    Content     `json:"content"`
	StartAt    int64       `json:"startAt"`
	EndAt      int64       `json:"endAt"`
}

// NewSong creates an empty song with initialized content and timestamps.
func NewSong(songID, title string) *Song {
	s := &Song{
		Title:      title,
		SectionIDs: []SectionID{},
		Content:    NewContent(),
	}
	s.ID = songID
	s.InitTimestamps()
	return s
}

// Clone returns a deep copy of the song.
func (s *Song) Clone() *Song {
	cp := *s
	cp.SectionIDs = cloneSlice(s.SectionIDs)
	cp.Content = s.Content.Clone()
	return &cp
}

// IDs returns every content id, for seeding an id registry.
func (s *Song) IDs() []string {
	return s.Content.IDs()
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
