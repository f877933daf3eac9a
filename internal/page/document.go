package page

import (
	"context"
	"io"

	"github.com/dgallion1/pagetoc/internal/dom"
	"golang.org/x/net/html"
)

// Document is a page that loads in the background. It satisfies
// smartquotes.Source and smartquotes.Notifier.
type Document struct {
	name string
	done chan struct{}

	// Set before done is closed.
	root *html.Node
	body *html.Node
	err  error
}

// Open starts loading r with l and returns at once.
func Open(l Loader, r io.Reader, name string) *Document {
	d := &Document{name: name, done: make(chan struct{})}
	go func() {
		defer close(d.done)
		root, err := l.Load(r, name)
		if err != nil {
			d.err = err
			return
		}
		d.root = root
		d.body = dom.FindBody(root)
	}()
	return d
}

// Name returns the file name the document was opened with.
func (d *Document) Name() string { return d.name }

// Done is closed once loading finishes, successfully or not.
func (d *Document) Done() <-chan struct{} { return d.done }

// Ready reports whether loading has finished.
func (d *Document) Ready() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Body returns the <body> element, or nil while loading or after a failure.
func (d *Document) Body() *html.Node {
	if !d.Ready() {
		return nil
	}
	return d.body
}

// Root returns the document node, or nil while loading or after a failure.
func (d *Document) Root() *html.Node {
	if !d.Ready() {
		return nil
	}
	return d.root
}

// Err returns the load error, if any, once the document is ready.
func (d *Document) Err() error {
	if !d.Ready() {
		return nil
	}
	return d.err
}

// Wait blocks until loading finishes or ctx is done.
func (d *Document) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
