package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// PAGE [CIBLE]: demo-it-business.html {
	pageMarker = regexp.MustCompile(`(?i)^PAGE(?:\s+[\p{L}]+)?\s*:\s*(.*)$`)
	// SECTION [SÉMANTIQUE]: Hero (list)
	sectionMarker = regexp.MustCompile(`(?i)^SECTION(?:\s+[\p{L}]+)?\s*:\s*(.*)$`)
	kindHint      = regexp.MustCompile(`\s*\(([^()]*)\)\s*$`)
)

const minPageIDLen = 3

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space (French punctuation)
	"\u2007", " ", // figure space
)

// normalize composes the line, maps non-breaking spaces to spaces and trims it.
func normalize(line string) string {
	line = norm.NFC.String(line)
	line = spaceReplacer.Replace(line)
	return strings.TrimSpace(line)
}

type pageMatch struct {
	id    string
	opens bool // the marker line carries the block-open brace
	empty bool // colon present but nothing usable after it
}

// matchPage reports whether line is a page marker. Candidates whose identifier
// looks like prose (internal whitespace, too short) are not markers.
func matchPage(line string) (pageMatch, bool) {
	m := pageMarker.FindStringSubmatch(line)
	if m == nil {
		return pageMatch{}, false
	}
	rest := strings.TrimSpace(m[1])
	var pm pageMatch
	if strings.HasSuffix(rest, "{") {
		pm.opens = true
		rest = strings.TrimSpace(strings.TrimSuffix(rest, "{"))
	}
	rest = strings.TrimSpace(strings.Trim(rest, "{}"))
	rest = strings.TrimFunc(rest, unicode.IsPunct)
	if rest == "" {
		pm.empty = true
		return pm, true
	}
	if strings.ContainsFunc(rest, unicode.IsSpace) || utf8.RuneCountInString(rest) < minPageIDLen {
		return pageMatch{}, false
	}
	pm.id = rest
	return pm, true
}

type sectionMatch struct {
	title string
	hint  string
}

// matchSection reports whether line is a section marker. An empty title is
// returned as a match with title "".
func matchSection(line string) (sectionMatch, bool) {
	m := sectionMarker.FindStringSubmatch(line)
	if m == nil {
		return sectionMatch{}, false
	}
	title := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "{}"))
	var sm sectionMatch
	if h := kindHint.FindStringSubmatchIndex(title); h != nil {
		sm.hint = strings.ToLower(strings.TrimSpace(title[h[2]:h[3]]))
		title = strings.TrimSpace(title[:h[0]])
	}
	sm.title = title
	return sm, true
}

// splitClose separates a trailing block-close from a content line. Lines that
// also contain an opening brace are left intact.
func splitClose(line string) (string, bool) {
	if !strings.HasSuffix(line, "}") || strings.Contains(line, "{") {
		return line, false
	}
	return strings.TrimRight(line, "} \t"), true
}
