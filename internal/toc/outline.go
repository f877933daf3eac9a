package toc

// Node is one heading in the outline. The root node is a sentinel without an
// entry.
type Node struct {
	Entry    Entry   `json:"entry"`
	Children []*Node `json:"children,omitempty"`
	Parent   *Node   `json:"-"`

	root bool
}

// IsRoot reports whether n is the outline's sentinel root.
func (n *Node) IsRoot() bool {
	return n.root
}

// Depth returns the number of edges between n and the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

func (n *Node) appendChild(e Entry) *Node {
	c := &Node{Entry: e, Parent: n}
	n.Children = append(n.Children, c)
	return c
}

// Outline is the heading hierarchy of one page.
type Outline struct {
	Root *Node
}

// BuildOutline folds entries, in ascending offset order, into an outline.
//
// An entry of level L becomes a child of the node at depth L-1 on the most
// recently appended path. When that path is shorter, the entry attaches to
// its deepest node instead.
func BuildOutline(entries []Entry) *Outline {
	root := &Node{root: true}
	path := []*Node{root}

	for _, e := range entries {
		depth := e.Level - 1
		if depth < 0 {
			depth = 0
		}
		// Pop back to the target depth; a shorter path is left as is.
		if len(path)-1 > depth {
			path = path[:depth+1]
		}
		parent := path[len(path)-1]
		path = append(path, parent.appendChild(e))
	}

	return &Outline{Root: root}
}

// Walk calls fn for every heading node in document order.
func (o *Outline) Walk(fn func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			fn(c)
			walk(c)
		}
	}
	walk(o.Root)
}

// Find returns the first node whose entry has the given id, or nil.
func (o *Outline) Find(id string) *Node {
	var found *Node
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		for _, c := range n.Children {
			if c.Entry.ID == id {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(o.Root)
	return found
}

// Depth returns the depth of the deepest node; 0 for an empty outline.
func (o *Outline) Depth() int {
	deepest := 0
	o.Walk(func(n *Node) {
		if d := n.Depth(); d > deepest {
			deepest = d
		}
	})
	return deepest
}

// Path returns the entries from the root (exclusive) down to n (inclusive).
// A nil node or the root yields an empty path.
func Path(n *Node) []Entry {
	var path []Entry
	for ; n != nil && !n.root; n = n.Parent {
		path = append(path, n.Entry)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
