// Package dom holds small query and mutation helpers over golang.org/x/net/html
// trees. They stand in for the browser DOM operations the page tools need.
package dom

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// HeadingLevel returns 1-6 for h1-h6 tag names and 0 otherwise.
func HeadingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the node just visited.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// TextContent returns the concatenated, trimmed text below n.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// InnerHTML serializes the children of n the way a browser's innerHTML does:
// text escapes only &, <, > and non-breaking spaces, so quotes stay literal.
func InnerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := serialize(&buf, c); err != nil {
			return "", fmt.Errorf("render inner html: %w", err)
		}
	}
	return buf.String(), nil
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", `"`, "&quot;")
)

// rawText elements serialize their text children unescaped.
var rawText = map[string]bool{
	"style": true, "script": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "plaintext": true, "noscript": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

func serialize(w *strings.Builder, n *html.Node) error {
	switch n.Type {
	case html.TextNode:
		if n.Parent != nil && n.Parent.Type == html.ElementNode && rawText[n.Parent.Data] {
			w.WriteString(n.Data)
		} else {
			textEscaper.WriteString(w, n.Data)
		}
	case html.CommentNode:
		w.WriteString("<!--" + n.Data + "-->")
	case html.DoctypeNode:
		w.WriteString("<!DOCTYPE " + n.Data + ">")
	case html.ElementNode:
		w.WriteString("<" + n.Data)
		for _, a := range n.Attr {
			w.WriteString(" ")
			if a.Namespace != "" {
				w.WriteString(a.Namespace + ":")
			}
			w.WriteString(a.Key + `="`)
			attrEscaper.WriteString(w, a.Val)
			w.WriteString(`"`)
		}
		w.WriteString(">")
		if voidElements[n.Data] {
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := serialize(w, c); err != nil {
				return err
			}
		}
		w.WriteString("</" + n.Data + ">")
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := serialize(w, c); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unexpected node type %d", n.Type)
	}
	return nil
}

// Render serializes n and its subtree.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// TrimInner strips leading whitespace from the first text children of n and
// trailing whitespace from the last ones, removing text nodes left empty.
func TrimInner(n *html.Node) {
	for c := n.FirstChild; c != nil && c.Type == html.TextNode; c = n.FirstChild {
		c.Data = strings.TrimLeftFunc(c.Data, unicode.IsSpace)
		if c.Data != "" {
			break
		}
		n.RemoveChild(c)
	}
	for c := n.LastChild; c != nil && c.Type == html.TextNode; c = n.LastChild {
		c.Data = strings.TrimRightFunc(c.Data, unicode.IsSpace)
		if c.Data != "" {
			break
		}
		n.RemoveChild(c)
	}
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the class attribute of n lists cls.
func HasClass(n *html.Node, cls string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == cls {
			return true
		}
	}
	return false
}

// HasAncestor reports whether any element above n satisfies match.
func HasAncestor(n *html.Node, match func(*html.Node) bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && match(p) {
			return true
		}
	}
	return false
}

// FindBody returns the <body> element, or nil.
func FindBody(n *html.Node) *html.Node {
	return find(n, func(n *html.Node) bool { return IsElement(n, "body") })
}

// FindTitle returns the text of the <title> element, or "".
func FindTitle(n *html.Node) string {
	if t := find(n, func(n *html.Node) bool { return IsElement(n, "title") }); t != nil {
		return TextContent(t)
	}
	return ""
}

// FindByID returns the first element whose id attribute equals id.
func FindByID(n *html.Node, id string) *html.Node {
	return find(n, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// SetInnerHTML replaces the children of n with the parsed fragment.
func SetInnerHTML(n *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), n)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, match); f != nil {
			return f
		}
	}
	return nil
}
