package toc

// DefaultLookAhead biases scroll lookups so a heading counts as current a
// little before it reaches the top of the viewport.
const DefaultLookAhead = 200

// Controller owns the heading index and outline of one page and answers
// scroll-position queries against them.
type Controller struct {
	index     *Index
	outline   *Outline
	lookAhead int
}

// NewController builds the outline for idx. A negative lookAhead selects
// DefaultLookAhead.
func NewController(idx *Index, lookAhead int) *Controller {
	if idx == nil {
		idx = NewIndex(nil)
	}
	if lookAhead < 0 {
		lookAhead = DefaultLookAhead
	}
	return &Controller{
		index:     idx,
		outline:   BuildOutline(idx.Entries()),
		lookAhead: lookAhead,
	}
}

func (c *Controller) Index() *Index     { return c.index }
func (c *Controller) Outline() *Outline { return c.outline }

// Closest returns the heading that is current at scroll position pos.
func (c *Controller) Closest(pos int) (Entry, bool) {
	return c.index.Before(pos + c.lookAhead)
}

// Locate returns the breadcrumb path for scroll position pos. It is empty
// when no heading precedes pos.
func (c *Controller) Locate(pos int) []Entry {
	e, ok := c.Closest(pos)
	if !ok {
		return nil
	}
	return Path(c.outline.Find(e.ID))
}

// Bar renders the breadcrumb bar for scroll position pos.
func (c *Controller) Bar(pos int) string {
	return RenderBar(c.Locate(pos))
}

// Full renders the full outline panel.
func (c *Controller) Full() string {
	return RenderFull(c.outline)
}
