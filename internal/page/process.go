package page

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dgallion1/pagetoc/internal/dom"
	"github.com/dgallion1/pagetoc/internal/layout"
	"github.com/dgallion1/pagetoc/internal/smartquotes"
	"github.com/dgallion1/pagetoc/internal/toc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options controls page processing.
type Options struct {
	// Smartquotes runs the quote rewriter over the body.
	Smartquotes bool
	// LookAhead is passed to toc.NewController; negative means the default.
	LookAhead int
	// ExcludeClasses is passed to toc.IndexHeadings.
	ExcludeClasses []string
	// Script, when set, is appended to the body as an inline script.
	Script string
	// CodeStyle is the chroma style for Markdown code blocks.
	CodeStyle string
	// Loader overrides the loader chosen from the file name.
	Loader Loader
}

// Result is a processed page.
type Result struct {
	Name       string
	Title      string
	Doc        *html.Node
	Controller *toc.Controller
}

// Render serializes the processed page.
func (r *Result) Render() (string, error) {
	return dom.Render(r.Doc)
}

// Process loads the page in r, rewrites its quotes, indexes its headings with
// m, and fills the full outline container. The breadcrumb bar and the outline
// panel start hidden.
func Process(ctx context.Context, r io.Reader, name string, m layout.Measurer, opts Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		var err error
		if loader, err = loaderFor(name, opts.CodeStyle); err != nil {
			return nil, err
		}
	}

	doc := Open(loader, r, name)
	if opts.Smartquotes {
		if err := smartquotes.Deferred(ctx, doc); err != nil {
			return nil, fmt.Errorf("smartquotes %s: %w", name, err)
		}
	}
	if err := doc.Wait(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	root := doc.Root()

	idx, err := toc.IndexHeadings(ctx, root, m, toc.IndexOptions{ExcludeClasses: opts.ExcludeClasses})
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", name, err)
	}
	ctrl := toc.NewController(idx, opts.LookAhead)

	if full := dom.FindByID(root, FullID); full != nil {
		if err := dom.SetInnerHTML(full, ctrl.Full()); err != nil {
			return nil, fmt.Errorf("process %s: %w", name, err)
		}
		dom.SetAttr(full, "hidden", "")
	}
	if bar := dom.FindByID(root, BarID); bar != nil {
		dom.SetAttr(bar, "hidden", "")
	}
	if opts.Script != "" {
		appendScript(doc.Body(), opts.Script)
	}

	res := &Result{
		Name:       name,
		Title:      dom.FindTitle(root),
		Doc:        root,
		Controller: ctrl,
	}
	if res.Title == "" {
		if hs := idx.Entries(); len(hs) > 0 {
			res.Title = hs[0].Title
		}
	}

	log.Debug("page processed", "name", name, "headings", idx.Len(), "depth", ctrl.Outline().Depth())
	return res, nil
}

func appendScript(body *html.Node, src string) {
	if body == nil {
		return
	}
	script := &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script"}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: strings.TrimSpace(src)})
	body.AppendChild(script)
}
