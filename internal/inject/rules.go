package inject

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules maps page IDs to the selectors that receive each section.
type Rules struct {
	Pages map[string]PageRules `yaml:"pages"`
}

type PageRules struct {
	Sections []SectionRule `yaml:"sections"`
	Remove   []RemoveRule  `yaml:"remove"`
}

// SectionRule targets a section whose title contains Title, case-insensitively.
type SectionRule struct {
	Title    string `yaml:"title"`
	Selector string `yaml:"selector"`
	Contains string `yaml:"contains"` // optional text filter on matched nodes
}

// RemoveRule deletes template leftovers. With Parent set, the nearest matching
// ancestor is removed instead of the node itself.
type RemoveRule struct {
	Selector string `yaml:"selector"`
	Parent   string `yaml:"parent"`
}

// LoadRules reads and validates a rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks every rule has what it needs to match.
func (r *Rules) Validate() error {
	for page, pr := range r.Pages {
		for i, sr := range pr.Sections {
			if strings.TrimSpace(sr.Title) == "" {
				return fmt.Errorf("rules: page %s: section rule %d has no title", page, i)
			}
			if strings.TrimSpace(sr.Selector) == "" {
				return fmt.Errorf("rules: page %s: section rule %q has no selector", page, sr.Title)
			}
		}
		for i, rr := range pr.Remove {
			if strings.TrimSpace(rr.Selector) == "" {
				return fmt.Errorf("rules: page %s: remove rule %d has no selector", page, i)
			}
		}
	}
	return nil
}

// For returns the rule set for a page.
func (r *Rules) For(pageID string) (PageRules, bool) {
	if r == nil {
		return PageRules{}, false
	}
	pr, ok := r.Pages[pageID]
	return pr, ok
}

// match returns the first rule whose title is contained in the section title.
func (pr PageRules) match(title string) (SectionRule, bool) {
	t := strings.ToLower(title)
	for _, sr := range pr.Sections {
		if strings.Contains(t, strings.ToLower(strings.TrimSpace(sr.Title))) {
			return sr, true
		}
	}
	return SectionRule{}, false
}
