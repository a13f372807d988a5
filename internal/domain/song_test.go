package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// buildSong creates a song with two sections:
//
//	_s1 VERSE  -> _l1 -> _p1 "Hello" [1000,2000) A, _p2 "World" [2000,3000) B
//	_s2 CHORUS -> _l2 -> _p3 "Foo"   [4000,5000),   _p4 "Bar"   [5000,6000)
func buildSong(t *testing.T) *Song {
	t.Helper()

	s := NewSong("song-1", "Test Song")
	s.SectionIDs = []SectionID{"_s1", "_s2"}
	s.Content.Sections["_s1"] = &Section{ID: "_s1", Kind: SectionKindVerse, LinesIDs: []LineID{"_l1"}}
	s.Content.Sections["_s2"] = &Section{ID: "_s2", Kind: SectionKindChorus, LinesIDs: []LineID{"_l2"}}
	s.Content.Lines["_l1"] = &Line{ID: "_l1", SectionID: "_s1", PartsIDs: []PartID{"_p1", "_p2"}}
	s.Content.Lines["_l2"] = &Line{ID: "_l2", SectionID: "_s2", PartsIDs: []PartID{"_p3", "_p4"},
		Skill: &Skill{Type: SkillVocal, Level: 2}, Adlib: true}
	s.Content.Parts["_p1"] = &Part{ID: "_p1", LineID: "_l1", Text: "Hello", StartTime: 1000, EndTime: 2000, RecommendedAssignee: "A"}
	s.Content.Parts["_p2"] = &Part{ID: "_p2", LineID: "_l1", Text: "World", StartTime: 2000, EndTime: 3000, RecommendedAssignee: "B"}
	s.Content.Parts["_p3"] = &Part{ID: "_p3", LineID: "_l2", Text: "Foo", StartTime: 4000, EndTime: 5000, RecommendedAssignee: AssigneeUnassigned}
	s.Content.Parts["_p4"] = &Part{ID: "_p4", LineID: "_l2", Text: "Bar", StartTime: 5000, EndTime: 6000, RecommendedAssignee: AssigneeUnassigned}
	s.StartAt = 0
	s.EndAt = 7000
	return s
}

func TestSong_JSONRoundTrip(t *testing.T) {
	song := buildSong(t)
	song.Artist = "Band"
	song.VideoID = "dQw4w9WgXcQ"

	data, err := json.Marshal(song)
	require.NoError(t, err)

	var decoded Song
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, *song, decoded)
}

func TestSong_JSONContentIsStringBlob(t *testing.T) {
	song := buildSong(t)

	data, err := json.Marshal(song)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	blob, ok := raw["content"].(string)
	require.True(t, ok, "content should be encoded as a string")

	var flat map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &flat))
	assert.Len(t, flat, 8)
	assert.Equal(t, "section", flat["_s1"]["type"])
	assert.Equal(t, "line", flat["_l1"]["type"])
	assert.Equal(t, "part", flat["_p1"]["type"])
}

func TestContent_UnmarshalUnknownType(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`{"_x1":{"type":"verse"}}`), &c)
	assert.Error(t, err)
}

func TestSong_Clone_IsDeep(t *testing.T) {
	song := buildSong(t)
	clone := song.Clone()

	clone.Content.Parts["_p1"].Text = "Changed"
	clone.Content.Lines["_l1"].PartsIDs[0] = "_p9"
	clone.Content.Lines["_l2"].Skill.Level = 3
	clone.SectionIDs[0] = "_s9"

	assert.Equal(t, "Hello", song.Content.Parts["_p1"].Text)
	assert.Equal(t, PartID("_p1"), song.Content.Lines["_l1"].PartsIDs[0])
	assert.Equal(t, 2, song.Content.Lines["_l2"].Skill.Level)
	assert.Equal(t, SectionID("_s1"), song.SectionIDs[0])
}

func TestDistribution_JSONRoundTrip(t *testing.T) {
	dist := NewDistribution("dist-1", "song-1", "group-1")
	dist.Assignees["a"] = Assignee{ID: "a", Name: "Alice", Color: "#ff0000"}
	dist.Mapping["_p1"] = []string{"a"}
	dist.Mapping["_p2"] = []string{AssigneeAll}

	data, err := json.Marshal(dist)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.IsType(t, "", raw["mapping"])

	var decoded Distribution
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *dist, decoded)
}

func TestFormation_JSONRoundTrip(t *testing.T) {
	f := NewFormation("form-1", "song-1", "dist-1")
	f.Timeline["0"] = []string{"0::0", "10::5"}
	f.Timeline["1500"] = []string{"3::4", "-2::7"}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded Formation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *f, decoded)
}

func TestDistribution_AssigneeIDsSorted(t *testing.T) {
	dist := NewDistribution("dist-1", "song-1", "group-1")
	dist.Assignees["c"] = Assignee{ID: "c", Name: "Cara"}
	dist.Assignees["a"] = Assignee{ID: "a", Name: "Ann"}
	dist.Assignees["b"] = Assignee{ID: "b"}

	assert.Equal(t, []string{"a", "b", "c"}, dist.AssigneeIDs())
	assert.Equal(t, "Ann", dist.AssigneeName("a"))
	assert.Equal(t, "b", dist.AssigneeName("b"))
	assert.Equal(t, AssigneeAll, dist.AssigneeName(AssigneeAll))
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
		ok   bool
	}{
		{"0::0", Position{0, 0}, true},
		{"12::-3", Position{12, -3}, true},
		{"12:3", Position{}, false},
		{"a::3", Position{}, false},
		{"3::", Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePosition(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestSectionKind_IsValid(t *testing.T) {
	assert.True(t, SectionKindChorus.IsValid())
	assert.True(t, SectionKindNull.IsValid())
	assert.False(t, SectionKind("KAZOO").IsValid())
}

func TestSong_LookupNotFound(t *testing.T) {
	song := buildSong(t)

	_, err := song.Part("_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = song.Line("_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = song.Section("_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDistribution_CloneIsDeep(t *testing.T) {
	dist := NewDistribution("dist-1", "song-1", "")
	dist.Assignees["a"] = Assignee{ID: "a", Name: "Ann"}
	dist.Mapping["_p1"] = []string{"a"}

	cp := dist.Clone()
	cp.Assignees["b"] = Assignee{ID: "b"}
	cp.Mapping["_p1"][0] = "b"

	assert.Len(t, dist.Assignees, 1)
	assert.Equal(t, []string{"a"}, dist.Mapping["_p1"])
}

func TestFormation_CloneCopiesTimelineMap(t *testing.T) {
	f := NewFormation("form-1", "song-1", "dist-1")
	f.Timeline["0"] = []string{"0::0"}

	cp := f.Clone()
	delete(cp.Timeline, "0")
	assert.Contains(t, f.Timeline, "0")
}
