package artifact

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docsplice/internal/doctree"
)

func sampleOutline() *doctree.Outline {
	o := doctree.NewOutline()
	// Deliberately not alphabetical.
	home := o.Ensure("demo-it-business.html")
	home.Sections = []doctree.Section{
		{Title: "Hero", Content: doctree.Content{Kind: doctree.KindBody, Text: "Votre avenir digital commence ici\nHawaii accompagne les PME."}},
		{Title: "Boutons", Hint: "buttons", Content: doctree.Content{Kind: doctree.KindButtons, Items: []string{"Découvrez nos expertises", "Contactez-nous"}}},
		{Title: "Nos atouts", Content: doctree.Content{Kind: doctree.KindList, Items: []string{"Expertise Azure", "Green IT"}}},
	}
	about := o.Ensure("about.html")
	about.Sections = []doctree.Section{
		{Title: "Notre Promesse", Content: doctree.Content{Kind: doctree.KindBody, Text: "yes"}},
	}
	return o
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			want := sampleOutline()

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, want.IDs(), got.IDs())
			for _, id := range want.IDs() {
				assert.Equal(t, want.Page(id).Sections, got.Page(id).Sections, id)
			}
		})
	}
}

func TestEncodeJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleOutline(), FormatJSON))
	out := buf.String()

	assert.Less(t, strings.Index(out, "demo-it-business.html"), strings.Index(out, "about.html"))
	assert.Contains(t, out, `"content": "Votre avenir digital commence ici\nHawaii accompagne les PME."`)
	assert.Contains(t, out, `"hint": "buttons"`)
}

func TestDecodeJSON_PlainArtifact(t *testing.T) {
	input := `{
  "b.html": [{"title": "Intro", "content": "Bonjour"}],
  "a.html": [{"title": "Points", "content": ["un", "deux"]}]
}`
	o, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.html", "a.html"}, o.IDs())
	assert.Equal(t, doctree.Content{Kind: doctree.KindBody, Text: "Bonjour"}, o.Page("b.html").Sections[0].Content)
	assert.Equal(t, doctree.Content{Kind: doctree.KindList, Items: []string{"un", "deux"}}, o.Page("a.html").Sections[0].Content)
}

func TestDecodeYAML_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("- a\n- b\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("a.html:\n  - title: x\n    content:\n      k: v\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("a.html:\n  - title: x\n    kind: table\n    content: [a]\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecodeJSON_UnknownKind(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"a.html":[{"title":"x","kind":"table","content":["a"]}]}`), FormatJSON)
	assert.Error(t, err)
}

func TestDecode_EmptyInput(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		o, err := Decode(strings.NewReader(""), f)
		require.NoError(t, err, f)
		assert.Empty(t, o.Pages, f)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out/outline.json", "outline.yaml", "outline.yml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, sampleOutline()))

		o, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, []string{"demo-it-business.html", "about.html"}, o.IDs(), name)
	}

	assert.Error(t, Save(filepath.Join(dir, "outline.txt"), sampleOutline()))
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}
