package outline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsplice/internal/doctree"
)

var (
	bulletItem  = regexp.MustCompile(`^[•\-]\s*([^\s•\-].*)$`)
	orderedItem = regexp.MustCompile(`^\d+\.\s+(\S.*)$`)
	bracketLine = regexp.MustCompile(`^(?:\s*\[[^\[\]]+\])+\s*$`)
	bracketed   = regexp.MustCompile(`\[([^\[\]]+)\]`)
)

// maxButtonLabel bounds the rune length of a single button label.
const maxButtonLabel = 40

// classify turns accumulated lines into typed content. An explicit hint wins
// over the shape of the lines.
func classify(lines []string, hint string) doctree.Content {
	switch {
	case strings.Contains(hint, "list"):
		return doctree.Content{Kind: doctree.KindList, Items: listItems(lines, false)}
	case strings.Contains(hint, "button"), strings.Contains(hint, "buton"):
		if labels, ok := buttonLabels(lines); ok {
			return doctree.Content{Kind: doctree.KindButtons, Items: labels}
		}
		return doctree.Content{Kind: doctree.KindButtons, Items: trimmedNonEmpty(lines)}
	case hint == "body", hint == "text":
		return body(lines)
	}

	if items := listItems(lines, true); items != nil {
		return doctree.Content{Kind: doctree.KindList, Items: items}
	}
	if labels, ok := buttonLabels(lines); ok {
		return doctree.Content{Kind: doctree.KindButtons, Items: labels}
	}
	return body(lines)
}

func body(lines []string) doctree.Content {
	return doctree.Content{Kind: doctree.KindBody, Text: strings.Join(lines, "\n")}
}

// listItems strips bullet and ordinal prefixes. When strict, any line without
// a prefix disqualifies the whole block and nil is returned.
func listItems(lines []string, strict bool) []string {
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		if m := bulletItem.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}
		if m := orderedItem.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}
		if strict {
			return nil
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// buttonLabels recognises "[A] [B]" lines and "A | B" lines.
func buttonLabels(lines []string) ([]string, bool) {
	if len(lines) == 0 {
		return nil, false
	}

	allBrackets := true
	for _, line := range lines {
		if !bracketLine.MatchString(line) {
			allBrackets = false
			break
		}
	}
	if allBrackets {
		var labels []string
		for _, line := range lines {
			for _, m := range bracketed.FindAllStringSubmatch(line, -1) {
				label := strings.TrimSpace(m[1])
				if label == "" || utf8.RuneCountInString(label) > maxButtonLabel {
					return nil, false
				}
				labels = append(labels, label)
			}
		}
		return labels, len(labels) > 0
	}

	// Every line must be pipe-separated so a heading above the labels keeps
	// the block as body.
	var labels []string
	for _, line := range lines {
		if !strings.Contains(line, "|") {
			return nil, false
		}
		for _, tok := range strings.Split(line, "|") {
			label := strings.TrimSpace(strings.Trim(strings.TrimSpace(tok), "[]"))
			if label == "" || utf8.RuneCountInString(label) > maxButtonLabel {
				return nil, false
			}
			labels = append(labels, label)
		}
	}
	return labels, true
}

func trimmedNonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(strings.Trim(strings.TrimSpace(l), "[]")); l != "" {
			out = append(out, l)
		}
	}
	return out
}
