package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Each source line of a
// block is one paragraph, since copy documents exported to Markdown keep one
// marker per line without blank lines between them. List items are prefixed
// with a bullet or their ordinal so list classification still applies.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var paragraphs []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.List:
			ordinal := node.Start
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				prefix := "• "
				if node.IsOrdered() {
					prefix = fmt.Sprintf("%d. ", ordinal)
					ordinal++
				}
				t := strings.Join(strings.Fields(extractText(item, src)), " ")
				if t != "" {
					paragraphs = append(paragraphs, prefix+t)
				}
			}
		case *ast.ThematicBreak:
			continue
		default:
			paragraphs = appendLines(paragraphs, extractText(n, src))
		}
	}
	return paragraphs, nil
}

// extractText gets the text content of a goldmark AST node. Leaf blocks such
// as code blocks carry raw lines; everything else is read from inline children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.FirstChild() == nil {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
