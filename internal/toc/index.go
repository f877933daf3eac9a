package toc

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/dgallion1/pagetoc/internal/dom"
	"github.com/dgallion1/pagetoc/internal/layout"
	"github.com/dgallion1/pagetoc/internal/slug"
	"golang.org/x/net/html"
)

// Entry is one indexed heading.
type Entry struct {
	Offset int    `json:"offset"` // Pixels from the document top.
	Level  int    `json:"level"`  // 1-6
	ID     string `json:"id"`
	Title  string `json:"title"`
}

// DefaultExcludeClasses marks containers whose headings stay out of the outline.
var DefaultExcludeClasses = []string{"aside", "figure"}

// IndexOptions controls heading indexing.
type IndexOptions struct {
	// ExcludeClasses lists container classes whose headings are not indexed.
	// <aside> and <figure> elements are always excluded. Nil means
	// DefaultExcludeClasses.
	ExcludeClasses []string
}

// Index holds headings keyed by vertical offset, in ascending offset order.
type Index struct {
	entries []Entry
}

// NewIndex builds an Index from entries given in document order. Entries
// sharing an offset keep the last one; negative offsets are dropped.
func NewIndex(entries []Entry) *Index {
	byOffset := make(map[int]Entry, len(entries))
	for _, e := range entries {
		if e.Offset < 0 {
			continue
		}
		byOffset[e.Offset] = e
	}
	sorted := make([]Entry, 0, len(byOffset))
	for _, e := range byOffset {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	return &Index{entries: sorted}
}

// Entries returns the indexed headings in ascending offset order.
func (x *Index) Entries() []Entry {
	out := make([]Entry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Len returns the number of indexed headings.
func (x *Index) Len() int {
	return len(x.entries)
}

// Before returns the entry with the greatest offset strictly less than limit.
func (x *Index) Before(limit int) (Entry, bool) {
	i := sort.Search(len(x.entries), func(i int) bool { return x.entries[i].Offset >= limit })
	if i == 0 {
		return Entry{}, false
	}
	return x.entries[i-1], true
}

// Headings returns every h1-h6 element below n in document order.
func Headings(n *html.Node) []*html.Node {
	var hs []*html.Node
	dom.Walk(n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && dom.HeadingLevel(n.Data) > 0 {
			hs = append(hs, n)
		}
		return true
	})
	return hs
}

// IndexHeadings assigns every heading in doc a slug id, trims its content,
// and indexes the headings that are not inside excluded containers.
func IndexHeadings(ctx context.Context, doc *html.Node, m layout.Measurer, opts IndexOptions) (*Index, error) {
	exclude := opts.ExcludeClasses
	if exclude == nil {
		exclude = DefaultExcludeClasses
	}
	excluded := func(n *html.Node) bool {
		if n.Data == "aside" || n.Data == "figure" {
			return true
		}
		for _, cls := range exclude {
			if dom.HasClass(n, cls) {
				return true
			}
		}
		return false
	}

	var targets []*html.Node
	for _, h := range Headings(doc) {
		inner, err := dom.InnerHTML(h)
		if err != nil {
			return nil, fmt.Errorf("index headings: %w", err)
		}
		dom.SetAttr(h, "id", slug.Slugify(inner))
		dom.TrimInner(h)

		if dom.HasAncestor(h, excluded) {
			continue
		}
		targets = append(targets, h)
	}
	if len(targets) == 0 {
		return NewIndex(nil), nil
	}

	offsets, err := m.Measure(ctx, doc, targets)
	if err != nil {
		return nil, fmt.Errorf("index headings: %w", err)
	}
	if len(offsets) != len(targets) {
		return nil, fmt.Errorf("index headings: %w", layout.ErrMismatch)
	}

	entries := make([]Entry, len(targets))
	for i, h := range targets {
		id, _ := dom.Attr(h, "id")
		entries[i] = Entry{
			Offset: int(math.Round(offsets[i])),
			Level:  dom.HeadingLevel(h.Data),
			ID:     id,
			Title:  dom.TextContent(h),
		}
	}
	return NewIndex(entries), nil
}
