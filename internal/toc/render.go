package toc

import (
	"html"
	"strings"
)

// ToggleLabel is the text of the control that opens the full outline panel.
const ToggleLabel = "Table of Contents"

// RenderBar renders the breadcrumb bar for path: a toggle for the full
// outline panel followed by one link per entry, separated by "&gt;".
func RenderBar(path []Entry) string {
	var buf strings.Builder
	buf.WriteString(`<div class="tocshell">`)
	buf.WriteString(`<div class="tocbutton" data-toggle="toc-full">`)
	buf.WriteString(ToggleLabel)
	buf.WriteString(`</div>`)
	for i, e := range path {
		if i > 0 {
			buf.WriteString(" &gt; ")
		}
		writeLink(&buf, e)
	}
	buf.WriteString(`</div>`)
	return buf.String()
}

// RenderFull renders the whole outline as a list, one item per heading,
// each prefixed with an em dash per nesting level.
func RenderFull(o *Outline) string {
	var items []string
	o.Walk(func(n *Node) {
		var buf strings.Builder
		buf.WriteString("\t<li>")
		buf.WriteString(strings.Repeat("&mdash;", n.Depth()))
		buf.WriteString(" ")
		writeLink(&buf, n.Entry)
		buf.WriteString("</li>")
		items = append(items, buf.String())
	})
	return "<ul>" + strings.Join(items, "\n") + "</ul>"
}

func writeLink(buf *strings.Builder, e Entry) {
	buf.WriteString(`<a href="#`)
	buf.WriteString(html.EscapeString(e.ID))
	buf.WriteString(`">`)
	buf.WriteString(html.EscapeString(e.Title))
	buf.WriteString(`</a>`)
}
