package artifact

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docsplice/internal/doctree"
)

// The YAML form is built from nodes rather than maps so page order is kept.

func scalar(v string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	if strings.Contains(v, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func outlineNode(o *doctree.Outline) *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range o.Pages {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range p.Sections {
			seq.Content = append(seq.Content, sectionNode(s))
		}
		root.Content = append(root.Content, scalar(p.ID), seq)
	}
	return root
}

func sectionNode(s doctree.Section) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, val *yaml.Node) {
		m.Content = append(m.Content, scalar(key), val)
	}
	add("title", scalar(s.Title))
	add("kind", scalar(string(s.Content.Kind)))
	if s.Hint != "" {
		add("hint", scalar(s.Hint))
	}
	if s.Content.Kind == doctree.KindBody {
		add("content", scalar(s.Content.Text))
	} else {
		items := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range s.Content.Items {
			items.Content = append(items.Content, scalar(it))
		}
		add("content", items)
	}
	return m
}

type sectionYAML struct {
	Title   string    `yaml:"title"`
	Kind    string    `yaml:"kind"`
	Hint    string    `yaml:"hint"`
	Content yaml.Node `yaml:"content"`
}

func outlineFromNode(doc *yaml.Node) (*doctree.Outline, error) {
	o := doctree.NewOutline()
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return o, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode yaml artifact: line %d: expected a mapping of pages", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("decode yaml artifact: page %q: expected a list of sections", key.Value)
		}
		p := o.Ensure(key.Value)
		for _, item := range val.Content {
			sec, err := sectionFromNode(item)
			if err != nil {
				return nil, fmt.Errorf("decode yaml artifact: page %q: %w", key.Value, err)
			}
			p.Sections = append(p.Sections, sec)
		}
	}
	return o, nil
}

func sectionFromNode(n *yaml.Node) (doctree.Section, error) {
	var v sectionYAML
	if err := n.Decode(&v); err != nil {
		return doctree.Section{}, err
	}
	if k := doctree.Kind(v.Kind); k != "" && !k.Valid() {
		return doctree.Section{}, fmt.Errorf("section %q: unknown kind %q", v.Title, v.Kind)
	}
	sec := doctree.Section{Title: v.Title, Hint: v.Hint}
	switch v.Content.Kind {
	case yaml.ScalarNode:
		sec.Content = doctree.Content{Kind: doctree.KindBody, Text: v.Content.Value}
	case yaml.SequenceNode:
		var items []string
		if err := v.Content.Decode(&items); err != nil {
			return doctree.Section{}, fmt.Errorf("section %q: %w", v.Title, err)
		}
		kind := doctree.Kind(v.Kind)
		if kind == "" || kind == doctree.KindBody {
			kind = doctree.KindList
		}
		sec.Content = doctree.Content{Kind: kind, Items: items}
	default:
		return doctree.Section{}, fmt.Errorf("section %q: content must be a string or a list of strings", v.Title)
	}
	return sec, nil
}
