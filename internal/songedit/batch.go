package songedit

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lyricsplit/lyricsplit-server/internal/domain"
	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
)

// FieldProblem describes one rejected batch update path.
type FieldProblem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// BatchUpdate applies field updates addressed by "<entityId>.<field>" paths,
// e.g. "_p4k2j9x.recommendedAssignee" or "_s0ab12c.kind". Every path is
// checked before anything is applied: if any path names a missing entity, an
// unknown field or a value of the wrong type, a validation error listing
// every problem is returned and the song is not touched.
//
// Section fields: kind. Section numbers are derived, so a kind change
// renumbers the song. Line fields: adlib, dismissible, skill (an
// object with type and level, or null). Part fields: text, startTime,
// endTime, recommendedAssignee. Relations are not updatable this way.
func (tx *Tx) BatchUpdate(updates map[string]any) error {
	paths := make([]string, 0, len(updates))
	for path := range updates {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	var (
		problems []FieldProblem
		apply    []func()
		timings  = make(map[domain.PartID][2]int64)
		renumber bool
	)
	fail := func(path, format string, args ...any) {
		problems = append(problems, FieldProblem{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for _, path := range paths {
		value := updates[path]
		rawID, field, ok := strings.Cut(path, ".")
		if !ok || rawID == "" || field == "" {
			fail(path, "path must look like <id>.<field>")
			continue
		}

		if sec, ok := tx.song.Content.Sections[domain.SectionID(rawID)]; ok {
			fn, err := sectionSetter(sec, field, value)
			if err != nil {
				fail(path, "%v", err)
				continue
			}
			apply = append(apply, fn)
			renumber = true
			continue
		}
		if line, ok := tx.song.Content.Lines[domain.LineID(rawID)]; ok {
			fn, err := lineSetter(line, field, value)
			if err != nil {
				fail(path, "%v", err)
				continue
			}
			apply = append(apply, fn)
			continue
		}
		if part, ok := tx.song.Content.Parts[domain.PartID(rawID)]; ok {
			if field == "startTime" || field == "endTime" {
				ms, err := asInt64(value)
				if err != nil {
					fail(path, "%v", err)
					continue
				}
				t, seen := timings[part.ID]
				if !seen {
					t = [2]int64{part.StartTime, part.EndTime}
				}
				if field == "startTime" {
					t[0] = ms
				} else {
					t[1] = ms
				}
				timings[part.ID] = t
				continue
			}
			fn, err := partSetter(part, field, value)
			if err != nil {
				fail(path, "%v", err)
				continue
			}
			apply = append(apply, fn)
			continue
		}
		fail(path, "entity %s not found", rawID)
	}

	for partID, t := range timings {
		if err := validateTiming(t[0], t[1]); err != nil {
			fail(string(partID)+".startTime", "%v", err)
			continue
		}
		part := tx.song.Content.Parts[partID]
		start, end := t[0], t[1]
		apply = append(apply, func() { part.StartTime, part.EndTime = start, end })
	}

	if len(problems) > 0 {
		slices.SortFunc(problems, func(a, b FieldProblem) int { return strings.Compare(a.Path, b.Path) })
		return domainerrors.ValidationWithDetails(
			fmt.Sprintf("%d of %d updates rejected", len(problems), len(updates)), problems)
	}
	for _, fn := range apply {
		fn()
	}
	if renumber {
		return tx.RenumberSections()
	}
	return nil
}

func sectionSetter(sec *domain.Section, field string, value any) (func(), error) {
	switch field {
	case "kind":
		s, err := asString(value)
		if err != nil {
			return nil, err
		}
		kind := domain.SectionKind(s)
		if !kind.IsValid() {
			return nil, fmt.Errorf("unknown section kind %q", s)
		}
		return func() { sec.Kind = kind }, nil
	}
	return nil, fmt.Errorf("section field %q cannot be updated", field)
}

func lineSetter(line *domain.Line, field string, value any) (func(), error) {
	switch field {
	case "adlib":
		b, err := asBool(value)
		if err != nil {
			return nil, err
		}
		return func() { line.Adlib = b }, nil
	case "dismissible":
		b, err := asBool(value)
		if err != nil {
			return nil, err
		}
		return func() { line.Dismissible = b }, nil
	case "skill":
		if value == nil {
			return func() { line.Skill = nil }, nil
		}
		skill, err := asSkill(value)
		if err != nil {
			return nil, err
		}
		if err := validateSkill(skill); err != nil {
			return nil, err
		}
		return func() { line.Skill = &skill }, nil
	}
	return nil, fmt.Errorf("line field %q cannot be updated", field)
}

func partSetter(part *domain.Part, field string, value any) (func(), error) {
	switch field {
	case "text":
		s, err := asString(value)
		if err != nil {
			return nil, err
		}
		return func() { part.Text = s }, nil
	case "recommendedAssignee":
		s, err := asString(value)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, fmt.Errorf("recommended assignee cannot be empty")
		}
		return func() { part.RecommendedAssignee = s }, nil
	}
	return nil, fmt.Errorf("part field %q cannot be updated", field)
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
	return b, nil
}

// asInt64 accepts Go integers and the float64 / json.Number values produced
// by decoding JSON, as long as they are whole numbers.
func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("expected a whole number, got %v", n)
		}
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is out of range", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func asSkill(v any) (domain.Skill, error) {
	switch s := v.(type) {
	case domain.Skill:
		return s, nil
	case *domain.Skill:
		if s == nil {
			return domain.Skill{}, fmt.Errorf("expected a skill, got null")
		}
		return *s, nil
	case map[string]any:
		t, err := asString(s["type"])
		if err != nil {
			return domain.Skill{}, fmt.Errorf("skill type: %w", err)
		}
		level, err := asInt64(s["level"])
		if err != nil {
			return domain.Skill{}, fmt.Errorf("skill level: %w", err)
		}
		return domain.Skill{Type: domain.SkillType(t), Level: int(level)}, nil
	}
	return domain.Skill{}, fmt.Errorf("expected a skill object, got %T", v)
}
