package page

import (
	"fmt"
	"io"

	"github.com/dgallion1/pagetoc/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Container ids the page script and the table of contents render into.
const (
	BarID     = "toc-bar"
	FullID    = "toc-full"
	ContentID = "content"
)

// HTMLLoader handles HTML files.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(r io.Reader, filename string) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	ensureContainers(doc)
	return doc, nil
}

// ensureContainers adds empty bar and outline containers at the top of the
// body when the page does not provide them.
func ensureContainers(doc *html.Node) {
	body := dom.FindBody(doc)
	if body == nil {
		return
	}
	for _, id := range []string{FullID, BarID} {
		if dom.FindByID(doc, id) != nil {
			continue
		}
		div := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Div,
			Data:     "div",
			Attr:     []html.Attribute{{Key: "id", Val: id}},
		}
		body.InsertBefore(div, body.FirstChild)
	}
}
