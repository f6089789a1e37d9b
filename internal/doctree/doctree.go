package doctree

// Kind classifies the shape of a section's content.
type Kind string

const (
	KindBody    Kind = "body"
	KindList    Kind = "list"
	KindButtons Kind = "buttons"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBody, KindList, KindButtons:
		return true
	}
	return false
}

// Content is the classified content of one section.
type Content struct {
	Kind  Kind
	Text  string   // set for KindBody
	Items []string // set for KindList and KindButtons
}

// IsEmpty reports whether the content carries no data.
func (c Content) IsEmpty() bool {
	if c.Kind == KindBody {
		return c.Text == ""
	}
	return len(c.Items) == 0
}

// Lines returns the content as a flat sequence of lines regardless of kind.
func (c Content) Lines() []string {
	if c.Kind != KindBody {
		return c.Items
	}
	if c.Text == "" {
		return nil
	}
	return splitLines(c.Text)
}

// Section is a named, ordered chunk of content within a page.
type Section struct {
	Title   string
	Hint    string // parenthesised annotation from the marker, e.g. "list"
	Content Content
}

// Page is the content scoped to one target HTML page.
type Page struct {
	ID       string
	Sections []Section
}

// Outline maps page IDs to their sections, in document order.
type Outline struct {
	Pages []*Page
	index map[string]*Page
}

func NewOutline() *Outline {
	return &Outline{index: make(map[string]*Page)}
}

// Page returns the page with the given ID, or nil.
func (o *Outline) Page(id string) *Page {
	if o == nil {
		return nil
	}
	if o.index == nil {
		o.reindex()
	}
	return o.index[id]
}

// Ensure returns the page with the given ID, appending a new one if needed.
func (o *Outline) Ensure(id string) *Page {
	if p := o.Page(id); p != nil {
		return p
	}
	p := &Page{ID: id}
	o.Pages = append(o.Pages, p)
	o.index[id] = p
	return p
}

// IDs returns page IDs in document order.
func (o *Outline) IDs() []string {
	ids := make([]string, 0, len(o.Pages))
	for _, p := range o.Pages {
		ids = append(ids, p.ID)
	}
	return ids
}

// SectionCount returns the total number of sections across all pages.
func (o *Outline) SectionCount() int {
	n := 0
	for _, p := range o.Pages {
		n += len(p.Sections)
	}
	return n
}

// Prune drops pages without sections.
func (o *Outline) Prune() {
	kept := o.Pages[:0]
	for _, p := range o.Pages {
		if len(p.Sections) > 0 {
			kept = append(kept, p)
		}
	}
	o.Pages = kept
	o.reindex()
}

func (o *Outline) reindex() {
	o.index = make(map[string]*Page, len(o.Pages))
	for _, p := range o.Pages {
		o.index[p.ID] = p
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
