package songedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// songWithKinds builds a song with one empty section per kind, in order.
func songWithKinds(t *testing.T, kinds ...domain.SectionKind) *domain.Song {
	t.Helper()
	tx := Begin(domain.NewSong("song-1", "Kinds"), nil)
	for _, kind := range kinds {
		_, err := tx.AddSection(kind, Append)
		require.NoError(t, err)
	}
	return tx.Commit()
}

func numbers(song *domain.Song) []string {
	out := make([]string, 0, len(song.SectionIDs))
	for _, sectionID := range song.SectionIDs {
		out = append(out, song.Content.Sections[sectionID].Number)
	}
	return out
}

func TestRenumberSections(t *testing.T) {
	tests := []struct {
		name  string
		kinds []domain.SectionKind
		want  []string
	}{
		{
			name: "runs and singletons",
			kinds: []domain.SectionKind{
				domain.SectionKindVerse, domain.SectionKindChorus, domain.SectionKindVerse,
				domain.SectionKindChorus, domain.SectionKindChorus, domain.SectionKindBridge,
			},
			want: []string{"I", "I", "II", "II.A", "II.B", ""},
		},
		{
			name:  "single run",
			kinds: []domain.SectionKind{domain.SectionKindChorus, domain.SectionKindChorus, domain.SectionKindChorus},
			want:  []string{"I.A", "I.B", "I.C"},
		},
		{
			name:  "all distinct",
			kinds: []domain.SectionKind{domain.SectionKindIntro, domain.SectionKindVerse, domain.SectionKindOutro},
			want:  []string{"", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := edit(t, songWithKinds(t, tt.kinds...), func(tx *Tx) error {
				return tx.RenumberSections()
			})
			assert.Equal(t, tt.want, numbers(out))
		})
	}
}

func TestRenumberSections_Idempotent(t *testing.T) {
	song := songWithKinds(t,
		domain.SectionKindVerse, domain.SectionKindChorus, domain.SectionKindChorus,
		domain.SectionKindVerse, domain.SectionKindChorus,
	)

	once := edit(t, song, func(tx *Tx) error { return tx.RenumberSections() })
	twice := edit(t, once, func(tx *Tx) error { return tx.RenumberSections() })

	assert.Equal(t, numbers(once), numbers(twice))
}

func TestRenumberSections_NullKindIsNoop(t *testing.T) {
	song := songWithKinds(t, domain.SectionKindVerse, domain.SectionKindNull, domain.SectionKindVerse)
	song.Content.Sections[song.SectionIDs[0]].Number = "keep"

	out := edit(t, song, func(tx *Tx) error { return tx.RenumberSections() })

	assert.Equal(t, []string{"keep", "", ""}, numbers(out))
}

func TestUpdateSectionKind_Renumbers(t *testing.T) {
	song := songWithKinds(t, domain.SectionKindVerse, domain.SectionKindChorus)

	out := edit(t, song, func(tx *Tx) error {
		return tx.UpdateSectionKind(song.SectionIDs[1], domain.SectionKindVerse)
	})
	assert.Equal(t, []string{"I.A", "I.B"}, numbers(out))

	_, err := Edit(song, nil, func(tx *Tx) error {
		return tx.UpdateSectionKind(song.SectionIDs[1], "KAZOO")
	})
	assert.Error(t, err)
}

func TestLetters(t *testing.T) {
	assert.Equal(t, "A", letters(0))
	assert.Equal(t, "Z", letters(25))
	assert.Equal(t, "AA", letters(26))
	assert.Equal(t, "AB", letters(27))
}
