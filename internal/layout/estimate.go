package layout

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pagetoc/internal/dom"
	"golang.org/x/net/html"
)

// headingScale is the font size of h1-h6 relative to body text.
var headingScale = [7]float64{0, 2.0, 1.5, 1.25, 1.1, 1.0, 0.9}

// Estimator approximates block layout: every block advances a cursor by its
// wrapped line count times the line height.
type Estimator struct {
	LineHeight   float64 // Body line height in pixels.
	CharsPerLine int     // Characters that fit on one body line.
	ImageHeight  float64 // Height used for images without a height attribute.
}

// NewEstimator returns an Estimator tuned for a ~720px content column.
func NewEstimator() *Estimator {
	return &Estimator{LineHeight: 24, CharsPerLine: 80, ImageHeight: 240}
}

func (e *Estimator) Measure(ctx context.Context, doc *html.Node, targets []*html.Node) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[*html.Node]int, len(targets))
	for i, t := range targets {
		want[t] = i
	}
	out := make([]float64, len(targets))

	root := dom.FindBody(doc)
	if root == nil {
		root = doc
	}
	y := 0.0
	var visit func(n *html.Node, hidden bool)
	visit = func(n *html.Node, hidden bool) {
		if n.Type == html.ElementNode {
			if i, ok := want[n]; ok {
				out[i] = y
			}
			if skipped(n) {
				return
			}
			hidden = hidden || isHidden(n)
			if h, leaf := e.blockHeight(n); leaf {
				// Targets nested in a leaf block sit at the block's top.
				top := y
				dom.Walk(n, func(c *html.Node) bool {
					if i, ok := want[c]; ok {
						out[i] = top
					}
					return true
				})
				if !hidden {
					y += h
				}
				return
			}
		}
		if n.Type == html.TextNode && !hidden {
			if t := strings.TrimSpace(n.Data); t != "" {
				y += e.lines(t, 1) * e.lineHeight()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, hidden)
		}
	}
	visit(root, false)
	return out, nil
}

// blockHeight returns the height of n when it is laid out as a single block
// whose children do not need their own traversal.
func (e *Estimator) blockHeight(n *html.Node) (float64, bool) {
	lh := e.lineHeight()
	if level := dom.HeadingLevel(n.Data); level > 0 {
		scale := headingScale[level]
		return e.lines(dom.TextContent(n), scale)*lh*scale + lh, true
	}
	switch n.Data {
	case "p", "li", "dt", "dd", "blockquote", "figcaption", "caption", "summary", "tr":
		return e.lines(dom.TextContent(n), 1)*lh + lh/2, true
	case "pre":
		text := dom.TextContent(n)
		return float64(strings.Count(text, "\n")+1)*lh + lh, true
	case "hr":
		return lh, true
	case "img", "svg", "video", "canvas", "iframe":
		if v, ok := dom.Attr(n, "height"); ok {
			if px, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
				return px, true
			}
		}
		return e.ImageHeight, true
	}
	return 0, false
}

func (e *Estimator) lines(text string, scale float64) float64 {
	cpl := e.CharsPerLine
	if cpl <= 0 {
		cpl = 80
	}
	perLine := math.Max(1, math.Floor(float64(cpl)/scale))
	n := math.Ceil(float64(utf8.RuneCountInString(text)) / perLine)
	return math.Max(1, n)
}

func (e *Estimator) lineHeight() float64 {
	if e.LineHeight <= 0 {
		return 24
	}
	return e.LineHeight
}

func skipped(n *html.Node) bool {
	switch n.Data {
	case "head", "script", "style", "template", "noscript":
		return true
	}
	return false
}

func isHidden(n *html.Node) bool {
	if _, ok := dom.Attr(n, "hidden"); ok {
		return true
	}
	style, _ := dom.Attr(n, "style")
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(style, "display:none")
}
