package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type sectionJSON struct {
	Title   string          `json:"title"`
	Kind    Kind            `json:"kind,omitempty"`
	Hint    string          `json:"hint,omitempty"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON encodes content as a string for body and a list otherwise.
func (s Section) MarshalJSON() ([]byte, error) {
	var raw []byte
	var err error
	if s.Content.Kind == KindBody {
		raw, err = json.Marshal(s.Content.Text)
	} else {
		items := s.Content.Items
		if items == nil {
			items = []string{}
		}
		raw, err = json.Marshal(items)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{
		Title:   s.Title,
		Kind:    s.Content.Kind,
		Hint:    s.Hint,
		Content: raw,
	})
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var v sectionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Kind != "" && !v.Kind.Valid() {
		return fmt.Errorf("section %q: unknown kind %q", v.Title, v.Kind)
	}
	s.Title = v.Title
	s.Hint = v.Hint

	var text string
	if err := json.Unmarshal(v.Content, &text); err == nil {
		s.Content = Content{Kind: KindBody, Text: text}
		return nil
	}
	var items []string
	if err := json.Unmarshal(v.Content, &items); err != nil {
		return fmt.Errorf("section %q: content must be a string or a list of strings", v.Title)
	}
	kind := v.Kind
	if kind == "" || kind == KindBody {
		kind = KindList
	}
	s.Content = Content{Kind: kind, Items: items}
	return nil
}

// MarshalJSON writes the outline as an object keyed by page ID, preserving order.
func (o *Outline) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range o.Pages {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		sections := p.Sections
		if sections == nil {
			sections = []Section{}
		}
		val, err := json.Marshal(sections)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by page ID, keeping key order.
func (o *Outline) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("outline: expected object")
	}

	*o = Outline{index: make(map[string]*Page)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("outline: expected page id")
		}
		var sections []Section
		if err := dec.Decode(&sections); err != nil {
			return fmt.Errorf("outline: page %q: %w", id, err)
		}
		p := o.Ensure(id)
		p.Sections = append(p.Sections, sections...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
