package smartquotes

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// verbatim elements keep their text exactly as written.
var verbatim = map[string]bool{
	"code":   true,
	"pre":    true,
	"script": true,
	"style":  true,
}

// Element rewrites the text below root in place and returns root.
//
// The text of each element is joined, rewritten as one string, and cut back
// into the original text nodes by their rune offsets and lengths. That split
// is exact only while the rules keep the text length, which the single
// character replacements do; the triple and double prime rules shorten the
// text and later nodes in the same element shift accordingly.
func Element(root *html.Node) *html.Node {
	if root != nil {
		rewrite(root)
	}
	return root
}

func rewrite(n *html.Node) string {
	if n.Type == html.ElementNode && verbatim[n.Data] {
		return ""
	}

	type span struct {
		node  *html.Node
		start int
	}
	var (
		spans []span
		buf   strings.Builder
		size  int
	)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			spans = append(spans, span{node: c, start: size})
			buf.WriteString(c.Data)
			size += utf8.RuneCountInString(c.Data)
		case c.FirstChild != nil:
			s := rewrite(c)
			buf.WriteString(s)
			size += utf8.RuneCountInString(s)
		}
	}

	text := String(buf.String())
	runes := []rune(text)
	for _, sp := range spans {
		if sp.node.Data == "" {
			continue
		}
		sp.node.Data = substr(runes, sp.start, utf8.RuneCountInString(sp.node.Data))
	}
	return text
}

func substr(r []rune, start, length int) string {
	if start >= len(r) {
		return ""
	}
	end := start + length
	if end > len(r) {
		end = len(r)
	}
	return string(r[start:end])
}

// Source is a document that may still be loading.
type Source interface {
	Ready() bool
	Body() *html.Node
}

// Notifier is implemented by sources that signal when they become ready.
type Notifier interface {
	Done() <-chan struct{}
}

// PollInterval is how often Deferred checks sources that cannot notify.
const PollInterval = 10 * time.Millisecond

// Deferred rewrites the body of src once src is ready: immediately if it
// already is, when Done fires for a Notifier, and by polling otherwise.
func Deferred(ctx context.Context, src Source) error {
	if !src.Ready() {
		if err := waitReady(ctx, src); err != nil {
			return err
		}
	}
	Element(src.Body())
	return nil
}

func waitReady(ctx context.Context, src Source) error {
	if n, ok := src.(Notifier); ok {
		select {
		case <-n.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if src.Ready() {
				return nil
			}
		}
	}
}
