package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Every body paragraph with text becomes one
// paragraph of the stream, followed in place by the paragraphs of table cells.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]string, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docsplice-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", filename, err)
	}

	var paragraphs []string
	add := func(para *docx.Paragraph) {
		text := docxParagraphText(para)
		if text == "" {
			return
		}
		// Word bullets live in numbering properties, not in the text.
		if para.Properties != nil && para.Properties.NumProperties != nil {
			text = "• " + text
		}
		paragraphs = append(paragraphs, text)
	}

	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			add(v)
		case *docx.Table:
			for _, row := range v.TableRows {
				for _, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						add(para)
					}
				}
			}
		}
	}
	return paragraphs, nil
}

// docxParagraphText joins the text runs of a paragraph, including hyperlink
// runs. Tabs and soft breaks become spaces so a paragraph stays one line.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch v := child.(type) {
		case *docx.Run:
			writeRun(&buf, v)
		case *docx.Hyperlink:
			writeRun(&buf, &v.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeRun(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch v := rc.(type) {
		case *docx.Text:
			buf.WriteString(v.Text)
		case *docx.Tab, *docx.BarterRabbet:
			buf.WriteByte(' ')
		}
	}
}
