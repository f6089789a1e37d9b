// Package inject splices parsed section content into the static HTML pages of
// a site template, guided by a selector rules file.
package inject

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/docsplice/internal/doctree"
)

var bracketLabel = regexp.MustCompile(`\[([^\[\]]*)\]`)

// Report summarises what happened to one page.
type Report struct {
	Page    string   `json:"page"`
	Applied []string `json:"applied"`
	Missed  []string `json:"missed,omitempty"`
	Removed int      `json:"removed"`
	Written bool     `json:"written"`
}

// Changed reports whether the page document was modified.
func (r Report) Changed() bool {
	return len(r.Applied) > 0 || r.Removed > 0
}

// Injector applies an outline to the pages under a site directory.
type Injector struct {
	mu      sync.Mutex // one Apply at a time per site directory
	siteDir string
	rules   *Rules
	dryRun  bool
	log     *slog.Logger
}

func New(siteDir string, rules *Rules, dryRun bool, log *slog.Logger) *Injector {
	return &Injector{
		siteDir: siteDir,
		rules:   rules,
		dryRun:  dryRun,
		log:     log,
	}
}

// SiteDir returns the directory pages are read from and written to.
func (in *Injector) SiteDir() string {
	return in.siteDir
}

// Apply processes every outline page that exists in the site directory and
// returns one report per processed page, in outline order.
func (in *Injector) Apply(ctx context.Context, o *doctree.Outline) ([]Report, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	var reports []Report
	for _, page := range o.Pages {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		log := in.log.With("page", page.ID)

		if filepath.Base(page.ID) != page.ID || page.ID == ".." {
			log.Warn("page id is not a plain file name, skipping")
			continue
		}
		path := filepath.Join(in.siteDir, page.ID)
		src, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("page not in site directory, skipping")
			continue
		}
		if err != nil {
			return reports, fmt.Errorf("read page %s: %w", page.ID, err)
		}

		pr, ok := in.rules.For(page.ID)
		if !ok {
			log.Warn("no injection rules for page")
		}
		out, rep, err := Splice(bytes.NewReader(src), page, pr)
		if err != nil {
			return reports, fmt.Errorf("splice page %s: %w", page.ID, err)
		}

		if rep.Changed() && !in.dryRun {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return reports, fmt.Errorf("write page %s: %w", page.ID, err)
			}
			rep.Written = true
		}
		for _, title := range rep.Missed {
			log.Warn("section not injected", "section", title)
		}
		log.Info("page processed",
			"applied", len(rep.Applied),
			"missed", len(rep.Missed),
			"removed", rep.Removed,
			"written", rep.Written,
		)
		reports = append(reports, rep)
	}
	return reports, nil
}

// Splice applies one page's sections to an HTML document and returns the
// rendered result. It does not touch the filesystem.
func Splice(r io.Reader, page *doctree.Page, pr PageRules) (string, Report, error) {
	rep := Report{Page: page.ID, Applied: []string{}}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", rep, fmt.Errorf("parse html: %w", err)
	}

	for _, sec := range page.Sections {
		rule, ok := pr.match(sec.Title)
		if !ok {
			rep.Missed = append(rep.Missed, sec.Title)
			continue
		}
		sel := doc.Find(rule.Selector)
		if rule.Contains != "" {
			sel = sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return strings.Contains(s.Text(), rule.Contains)
			})
		}
		if sel.Length() == 0 {
			rep.Missed = append(rep.Missed, sec.Title)
			continue
		}
		if !applySection(sel, sec.Content) {
			rep.Missed = append(rep.Missed, sec.Title)
			continue
		}
		rep.Applied = append(rep.Applied, sec.Title)
	}

	for _, rr := range pr.Remove {
		targets := doc.Find(rr.Selector)
		if rr.Parent != "" {
			// Elements without a matching ancestor are removed themselves.
			orphans := targets.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return s.Closest(rr.Parent).Length() == 0
			})
			targets = targets.Closest(rr.Parent).AddSelection(orphans)
		}
		rep.Removed += targets.Length()
		targets.Remove()
	}

	out, err := doc.Html()
	if err != nil {
		return "", rep, fmt.Errorf("render html: %w", err)
	}
	return out, rep, nil
}

// applySection reports false when the content kind has no rendering.
func applySection(sel *goquery.Selection, c doctree.Content) bool {
	switch c.Kind {
	case doctree.KindBody:
		fillBody(sel, bodyLines(c.Text))
	case doctree.KindButtons:
		if sel.Length() > 1 {
			sel.Each(func(i int, s *goquery.Selection) {
				if i < len(c.Items) {
					s.SetText(c.Items[i])
					s.SetAttr("data-text", c.Items[i])
				}
			})
			return true
		}
		sel.ReplaceWithHtml(fragments[c.Kind](c.Items))
	default:
		frag, ok := fragments[c.Kind]
		if !ok {
			return false
		}
		sel.First().ReplaceWithHtml(frag(c.Items))
	}
	return true
}

// fillBody gives node i line i. The last node takes all remaining lines.
func fillBody(sel *goquery.Selection, lines []string) {
	last := sel.Length() - 1
	sel.Each(func(i int, s *goquery.Selection) {
		switch {
		case i >= len(lines):
		case i == last:
			s.SetText(strings.Join(lines[i:], " "))
		default:
			s.SetText(lines[i])
		}
	})
}

func bodyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(bracketLabel.ReplaceAllString(l, "$1"))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
