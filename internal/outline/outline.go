// Package outline rebuilds the page/section structure of a copy document from
// its paragraph stream.
//
// The document dialect marks pages with "PAGE: name.html {" lines, sections
// with "SECTION: Title (kind)" lines and closes pages with "}". Authors were
// not consistent about braces or section markers, so the scanner recovers
// from missing braces and unmarked first sections instead of failing.
package outline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docsplice/internal/doctree"
)

// WarningKind names a recoverable problem found while scanning.
type WarningKind string

const (
	WarnStructural    WarningKind = "structural"
	WarnOrphanSection WarningKind = "orphan_section"
	WarnOrphanClose   WarningKind = "orphan_close"
)

// Warning describes a skipped or reinterpreted line. Warnings never stop a parse.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Line    int         `json:"line"`
	Text    string      `json:"text"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s (%q)", w.Line, w.Kind, w.Message, w.Text)
}

// Result is the outcome of one parse.
type Result struct {
	Outline    *doctree.Outline
	Warnings   []Warning
	Paragraphs int
}

type state int

const (
	outsidePage state = iota
	insidePageNoSection
	insideSection
)

type pageState struct {
	page *doctree.Page
	// spent is set once the page has an explicit section marker or has used
	// the implicit-section recovery.
	spent bool
}

type scanner struct {
	out      *doctree.Outline
	pages    map[string]*pageState
	warnings []Warning

	state state
	cur   *pageState

	title string
	hint  string
	buf   []string

	lineNo int
	line   string
}

// Parse scans paragraphs in order and returns the outline they describe.
// It is a pure function of its input.
func Parse(lines []string) *Result {
	s := &scanner{
		out:   doctree.NewOutline(),
		pages: make(map[string]*pageState),
	}
	for i, raw := range lines {
		s.step(i+1, raw)
	}
	s.closePage()
	s.out.Prune()

	return &Result{
		Outline:    s.out,
		Warnings:   s.warnings,
		Paragraphs: len(lines),
	}
}

// ParseReader parses a plain-text stream, one paragraph per line.
func ParseReader(r io.Reader) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read paragraphs: %w", err)
	}
	return Parse(lines), nil
}

func (s *scanner) step(n int, raw string) {
	line := normalize(raw)
	if line == "" {
		return
	}
	s.lineNo, s.line = n, line

	if pm, ok := matchPage(line); ok {
		if pm.empty {
			s.warn(WarnStructural, "page marker without identifier")
			return
		}
		s.openPage(pm.id)
		return
	}

	if sm, ok := matchSection(line); ok {
		s.section(sm)
		if _, closes := splitClose(line); closes && s.state != outsidePage {
			s.close()
		}
		return
	}

	switch line {
	case "{":
		// The page is already open once its marker has been seen.
		return
	case "}":
		s.close()
		return
	}

	content, closes := splitClose(line)
	if content != "" {
		s.content(content)
	}
	if closes {
		s.close()
	}
}

func (s *scanner) section(sm sectionMatch) {
	switch {
	case s.state == outsidePage:
		s.warn(WarnOrphanSection, "section marker outside any page")
	case sm.title == "":
		s.warn(WarnStructural, "section marker without title")
	default:
		s.finalizeSection()
		s.cur.spent = true
		s.title, s.hint = sm.title, sm.hint
		s.state = insideSection
	}
}

func (s *scanner) openPage(id string) {
	s.closePage()
	ps, ok := s.pages[id]
	if !ok {
		ps = &pageState{page: s.out.Ensure(id)}
		s.pages[id] = ps
	}
	s.cur = ps
	s.state = insidePageNoSection
}

func (s *scanner) content(line string) {
	switch s.state {
	case outsidePage:
		return
	case insidePageNoSection:
		if s.cur.spent {
			s.warn(WarnStructural, "content before first section marker of a reopened page dropped")
			return
		}
		// The page heading doubles as the title of its first section.
		s.cur.spent = true
		s.title, s.hint = line, ""
		s.state = insideSection
	case insideSection:
		s.buf = append(s.buf, line)
	}
}

func (s *scanner) close() {
	if s.state == outsidePage {
		s.warn(WarnOrphanClose, "closing brace outside any page")
		return
	}
	s.closePage()
}

func (s *scanner) closePage() {
	s.finalizeSection()
	s.cur = nil
	s.state = outsidePage
}

// finalizeSection appends the accumulating section to its page. Sections
// without content are dropped.
func (s *scanner) finalizeSection() {
	if s.state == insideSection && len(s.buf) > 0 {
		if content := classify(s.buf, s.hint); !content.IsEmpty() {
			s.cur.page.Sections = append(s.cur.page.Sections, doctree.Section{
				Title:   s.title,
				Hint:    s.hint,
				Content: content,
			})
		}
	}
	s.title, s.hint, s.buf = "", "", nil
	if s.cur != nil {
		s.state = insidePageNoSection
	}
}

func (s *scanner) warn(kind WarningKind, msg string) {
	s.warnings = append(s.warnings, Warning{
		Kind:    kind,
		Line:    s.lineNo,
		Text:    s.line,
		Message: msg,
	})
}

// Summary renders a one-line-per-page description, used in logs and the CLI.
func Summary(o *doctree.Outline) string {
	var b strings.Builder
	for _, p := range o.Pages {
		fmt.Fprintf(&b, "%s: %d sections\n", p.ID, len(p.Sections))
	}
	return b.String()
}
