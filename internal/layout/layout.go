// Package layout supplies the vertical offsets of heading elements.
//
// A browser knows where each heading lands after layout; a static HTML tree
// does not. Measurer abstracts over that: Estimator approximates offsets from
// the document structure alone, Browser asks headless Chrome.
package layout

import (
	"context"
	"errors"

	"golang.org/x/net/html"
)

// Sentinel errors for layout measurement.
var (
	ErrMismatch       = errors.New("measured offsets do not match requested elements")
	ErrBrowserConnect = errors.New("browser connection failed")
	ErrPageLoad       = errors.New("page load failed")
)

// Measurer returns the top offset, in CSS pixels from the document top, of
// each target element. The result is aligned with targets.
type Measurer interface {
	Measure(ctx context.Context, doc *html.Node, targets []*html.Node) ([]float64, error)
}

// Compile-time interface checks
var (
	_ Measurer = (*Estimator)(nil)
	_ Measurer = (*Browser)(nil)
	_ Measurer = Fixed(nil)
)

// Fixed is a Measurer that returns preset offsets, in target order.
type Fixed []float64

func (f Fixed) Measure(ctx context.Context, doc *html.Node, targets []*html.Node) ([]float64, error) {
	if len(f) != len(targets) {
		return nil, ErrMismatch
	}
	out := make([]float64, len(f))
	copy(out, f)
	return out, nil
}
