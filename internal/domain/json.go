package domain

import (
	"encoding/json"
	"fmt"
)

// The store keeps the nested parts of a document (song content, distribution
// mapping, formation timeline) as string-encoded JSON blobs. The types below
// implement that wire shape; everything else is plain JSON.

type sectionEntry struct {
	Type EntityKind `json:"type"`
	*Section
}

type lineEntry struct {
	Type EntityKind `json:"type"`
	*Line
}

type partEntry struct {
	Type EntityKind `json:"type"`
	*Part
}

// MarshalJSON encodes content as one flat object keyed by id, each entry tagged with its kind.
func (c Content) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, c.Len())
	for id, s := range c.Sections {
		flat[string(id)] = sectionEntry{Type: EntitySection, Section: s}
	}
	for id, l := range c.Lines {
		flat[string(id)] = lineEntry{Type: EntityLine, Line: l}
	}
	for id, p := range c.Parts {
		flat[string(id)] = partEntry{Type: EntityPart, Part: p}
	}
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat, kind-tagged object written by MarshalJSON.
func (c *Content) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}

	*c = NewContent()
	for key, raw := range flat {
		var head struct {
			Type EntityKind `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("decode content entry %s: %w", key, err)
		}

		switch head.Type {
		case EntitySection:
			var s Section
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("decode section %s: %w", key, err)
			}
			if s.ID == "" {
				s.ID = SectionID(key)
			}
			c.Sections[SectionID(key)] = &s
		case EntityLine:
			var l Line
			if err := json.Unmarshal(raw, &l); err != nil {
				return fmt.Errorf("decode line %s: %w", key, err)
			}
			if l.ID == "" {
				l.ID = LineID(key)
			}
			c.Lines[LineID(key)] = &l
		case EntityPart:
			var p Part
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("decode part %s: %w", key, err)
			}
			if p.ID == "" {
				p.ID = PartID(key)
			}
			c.Parts[PartID(key)] = &p
		default:
			return fmt.Errorf("decode content entry %s: unknown type %q", key, head.Type)
		}
	}
	return nil
}

type songAlias Song

// MarshalJSON encodes the song with its content as a string blob.
func (s Song) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(s.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		songAlias
		Content string `json:"content"`
	}{
		songAlias: songAlias(s),
		Content:   string(content),
	})
}

// UnmarshalJSON decodes a song written by MarshalJSON.
func (s *Song) UnmarshalJSON(data []byte) error {
	wire := struct {
		*songAlias
		Content string `json:"content"`
	}{
		songAlias: (*songAlias)(s),
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if wire.Content == "" {
		s.Content = NewContent()
		return nil
	}
	return json.Unmarshal([]byte(wire.Content), &s.Content)
}

type distributionAlias Distribution

// MarshalJSON encodes the distribution with its mapping as a string blob.
func (d Distribution) MarshalJSON() ([]byte, error) {
	mapping, err := json.Marshal(d.Mapping)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		distributionAlias
		Mapping string `json:"mapping"`
	}{
		distributionAlias: distributionAlias(d),
		Mapping:           string(mapping),
	})
}

// UnmarshalJSON decodes a distribution written by MarshalJSON.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	wire := struct {
		*distributionAlias
		Mapping string `json:"mapping"`
	}{
		distributionAlias: (*distributionAlias)(d),
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	d.Mapping = Mapping{}
	if wire.Mapping == "" {
		return nil
	}
	return json.Unmarshal([]byte(wire.Mapping), &d.Mapping)
}

type formationAlias Formation

// MarshalJSON encodes the formation with its timeline as a string blob.
func (f Formation) MarshalJSON() ([]byte, error) {
	timeline, err := json.Marshal(f.Timeline)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		formationAlias
		Timeline string `json:"timeline"`
	}{
		formationAlias: formationAlias(f),
		Timeline:       string(timeline),
	})
}

// UnmarshalJSON decodes a formation written by MarshalJSON.
func (f *Formation) UnmarshalJSON(data []byte) error {
	wire := struct {
		*formationAlias
		Timeline string `json:"timeline"`
	}{
		formationAlias: (*formationAlias)(f),
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	f.Timeline = Timeline{}
	if wire.Timeline == "" {
		return nil
	}
	return json.Unmarshal([]byte(wire.Timeline), &f.Timeline)
}
