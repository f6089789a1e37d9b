package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_MarkersOnePerLine(t *testing.T) {
	input := `# Contenus site

PAGE: home.html {
SECTION: Hero
Votre avenir digital commence ici
}
`
	p := &MarkdownParser{}
	paras, err := p.Parse(strings.NewReader(input), "contenus.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"Contenus site",
		"PAGE: home.html {",
		"SECTION: Hero",
		"Votre avenir digital commence ici",
		"}",
	}
	if len(paras) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(paras), paras)
	}
	for i, w := range want {
		if paras[i] != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, paras[i])
		}
	}
}

func TestMarkdownParser_Lists(t *testing.T) {
	input := "SECTION: Atouts\n\n- Expertise Azure\n- Green IT\n\n1. Analyse\n2. Conception\n"

	p := &MarkdownParser{}
	paras, err := p.Parse(strings.NewReader(input), "lists.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"SECTION: Atouts", "• Expertise Azure", "• Green IT", "1. Analyse", "2. Conception"}
	if len(paras) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(paras), paras)
	}
	for i, w := range want {
		if paras[i] != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, paras[i])
		}
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	paras, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 0 {
		t.Errorf("expected 0 paragraphs for empty input, got %d", len(paras))
	}
}
