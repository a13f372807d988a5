// Package lyrics parses free-form lyric text into section, line and part blocks.
//
// Blank lines separate sections, each remaining line is a lyric line, and "|"
// splits a line into parts:
//
//	[VERSE]
//	Hello | World
//	Second line
//
//	Foo | Bar
//
// An optional "[KIND]" header on the first line of a block names the section kind.
package lyrics

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

// PartSeparator splits a lyric line into parts.
const PartSeparator = "|"

var (
	// Matches a "[KIND]" header line.
	headerPattern = regexp.MustCompile(`^\[\s*([^\]]+?)\s*\]$`)
	// Matches runs of spaces and hyphens inside a kind name.
	kindSeparators = regexp.MustCompile(`[\s\-]+`)
	// Matches one or more blank lines.
	blankLines = regexp.MustCompile(`\n[ \t]*\n[\s]*`)

	upper = cases.Upper(language.Und)
)

// Block is one parsed section: its kind and its lines, each split into part texts.
type Block struct {
	Kind  domain.SectionKind
	Lines [][]string
}

// ParseSong splits text into section blocks. Blocks that end up without any
// non-blank part are dropped.
func ParseSong(text string) []Block {
	text = normalize(text)

	var blocks []Block
	for _, raw := range blankLines.Split(text, -1) {
		rows := strings.Split(strings.TrimSpace(raw), "\n")
		kind := domain.SectionKindNull
		if len(rows) > 0 {
			if k, ok := ParseHeader(rows[0]); ok {
				kind = k
				rows = rows[1:]
			}
		}

		block := Block{Kind: kind}
		for _, row := range rows {
			if parts := SplitParts(row); len(parts) > 0 {
				block.Lines = append(block.Lines, parts)
			}
		}
		if len(block.Lines) > 0 {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// ParseLines splits text into lines of part texts, ignoring block structure
// and headers. Used when appending to an existing section or line.
func ParseLines(text string) [][]string {
	var lines [][]string
	for _, row := range strings.Split(normalize(text), "\n") {
		if _, isHeader := ParseHeader(row); isHeader {
			continue
		}
		if parts := SplitParts(row); len(parts) > 0 {
			lines = append(lines, parts)
		}
	}
	return lines
}

// SplitParts splits one lyric line on PartSeparator, trimming every segment
// and skipping blank ones.
func SplitParts(row string) []string {
	var parts []string
	for _, seg := range strings.Split(row, PartSeparator) {
		if seg = strings.TrimSpace(seg); seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// ParseHeader recognizes a "[KIND]" header line. Only known kinds and NULL
// are headers; other bracketed rows such as "[laughs]" are lyrics.
// "[pre chorus]", "[Pre-Chorus]" and "[PRE_CHORUS]" all name the same kind.
func ParseHeader(row string) (domain.SectionKind, bool) {
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(row))
	if m == nil {
		return "", false
	}
	kind := domain.SectionKind(kindSeparators.ReplaceAllString(upper.String(m[1]), "_"))
	if !kind.IsValid() {
		return "", false
	}
	return kind, true
}

// normalize composes Unicode to NFC and unifies line endings.
func normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
