package doctree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutline_EnsureKeepsOrder(t *testing.T) {
	o := NewOutline()
	o.Ensure("b.html")
	o.Ensure("a.html")
	o.Ensure("b.html")
	assert.Equal(t, []string{"b.html", "a.html"}, o.IDs())
}

func TestOutline_Prune(t *testing.T) {
	o := NewOutline()
	o.Ensure("empty.html")
	o.Ensure("full.html").Sections = []Section{{Title: "S", Content: Content{Kind: KindBody, Text: "x"}}}
	o.Prune()

	assert.Equal(t, []string{"full.html"}, o.IDs())
	assert.Nil(t, o.Page("empty.html"))
	assert.Equal(t, 1, o.SectionCount())
}

func TestOutline_ZeroValue(t *testing.T) {
	var o Outline
	assert.Nil(t, o.Page("x"))
	o.Ensure("x")
	assert.NotNil(t, o.Page("x"))

	var nilOutline *Outline
	assert.Nil(t, nilOutline.Page("x"))
}

func TestContent_Lines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Content{Kind: KindBody, Text: "a\nb"}.Lines())
	assert.Nil(t, Content{Kind: KindBody}.Lines())
	assert.Equal(t, []string{"x"}, Content{Kind: KindList, Items: []string{"x"}}.Lines())
	assert.True(t, Content{Kind: KindButtons}.IsEmpty())
}

func TestOutlineJSON_PreservesOrder(t *testing.T) {
	o := NewOutline()
	o.Ensure("z.html").Sections = []Section{{Title: "Hero", Content: Content{Kind: KindBody, Text: "Bonjour"}}}
	o.Ensure("a.html").Sections = []Section{{Title: "Points", Hint: "list", Content: Content{Kind: KindList, Items: []string{"un"}}}}

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t,
		`{"z.html":[{"title":"Hero","kind":"body","content":"Bonjour"}],"a.html":[{"title":"Points","kind":"list","hint":"list","content":["un"]}]}`,
		string(data))

	var back Outline
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"z.html", "a.html"}, back.IDs())
	assert.Equal(t, o.Page("a.html").Sections, back.Page("a.html").Sections)
}

func TestSectionJSON_Errors(t *testing.T) {
	var s Section
	assert.Error(t, json.Unmarshal([]byte(`{"title":"x","content":42}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"title":"x","kind":"table","content":["a"]}`), &s))

	var o Outline
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &o))
}
