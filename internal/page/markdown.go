package page

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// DefaultCodeStyle is the chroma style used for fenced code blocks.
const DefaultCodeStyle = "github"

// shell wraps rendered Markdown in a page with the table of contents
// containers in place.
const shell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s</style>
</head>
<body>
<div id="` + BarID + `"></div>
<div id="` + FullID + `"></div>
<div id="` + ContentID + `">
%s</div>
</body>
</html>`

// MarkdownLoader handles Markdown files using goldmark.
type MarkdownLoader struct {
	md    goldmark.Markdown
	style string
}

// NewMarkdownLoader returns a loader that highlights code blocks with the
// named chroma style. Highlighting uses CSS classes; the style sheet is
// embedded in the page head.
func NewMarkdownLoader(style string) *MarkdownLoader {
	if style == "" {
		style = DefaultCodeStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithRendererOptions(
			// Raw HTML passes through so pages can use <aside> and <figure>.
			mdhtml.WithUnsafe(),
		),
	)
	return &MarkdownLoader{md: md, style: style}
}

func (l *MarkdownLoader) Load(r io.Reader, filename string) (*html.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := l.md.Parser().Parse(text.NewReader(src))
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = string(h.Text(src))
			break
		}
	}

	var body bytes.Buffer
	if err := l.md.Renderer().Render(&body, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var css bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&css, styles.Get(l.style)); err != nil {
		return nil, fmt.Errorf("write code style: %w", err)
	}

	page := fmt.Sprintf(shell, html.EscapeString(title), css.String(), body.String())
	out, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}
	return out, nil
}
