package inject

import (
	"html"
	"strings"

	"github.com/dgallion1/docsplice/internal/doctree"
)

// fragmentFunc renders items of one content kind as an HTML fragment.
type fragmentFunc func(items []string) string

var fragments = map[doctree.Kind]fragmentFunc{
	doctree.KindList:    listFragment,
	doctree.KindButtons: buttonsFragment,
}

func listFragment(items []string) string {
	var b strings.Builder
	b.WriteString(`<ul class="p-0 list-style-01 fs-16">`)
	for _, it := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(it))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func buttonsFragment(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		label := html.EscapeString(it)
		b.WriteString(`<a href="#" class="btn btn-medium btn-rounded btn-base-color btn-box-shadow">`)
		b.WriteString(`<span class="btn-double-text" data-text="` + label + `">` + label + `</span></a>`)
	}
	return b.String()
}
