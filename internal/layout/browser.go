package layout

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dgallion1/pagetoc/internal/dom"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"
)

// measureAttr tags target elements so the page script can find them.
const measureAttr = "data-pagetoc-measure"

const measureJS = `() => Array.from(document.querySelectorAll('[` + measureAttr + `]')).map(
	(el) => [Number(el.getAttribute('` + measureAttr + `')), el.getBoundingClientRect().top + window.scrollY])`

// BrowserConfig controls the headless Chrome measurer.
type BrowserConfig struct {
	Bin     string        // Chrome binary; empty lets rod download one.
	Width   int           // Viewport width in CSS pixels.
	Height  int           // Viewport height in CSS pixels.
	Timeout time.Duration // Page load timeout when ctx has no deadline.
}

// Browser measures offsets by loading the page in headless Chrome via go-rod.
// The browser is started lazily and reused until Close.
type Browser struct {
	cfg BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowser creates a Browser measurer.
func NewBrowser(cfg BrowserConfig) *Browser {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Browser{cfg: cfg}
}

// ensureBrowser lazily connects to the browser.
func (b *Browser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	}
	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || b.cfg.Bin != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		err := b.browser.Close()
		b.browser = nil
		return err
	}
	return nil
}

func (b *Browser) Measure(ctx context.Context, doc *html.Node, targets []*html.Node) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, nil
	}

	src, err := renderTagged(doc, targets)
	if err != nil {
		return nil, err
	}
	path, cleanup, err := writeTemp(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.Width,
		Height:            b.cfg.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: set viewport: %v", ErrPageLoad, err)
	}

	timeout := b.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	res, err := page.Eval(measureJS)
	if err != nil {
		return nil, fmt.Errorf("%w: measure: %v", ErrPageLoad, err)
	}

	pairs := res.Value.Arr()
	if len(pairs) != len(targets) {
		return nil, fmt.Errorf("%w: got %d offsets for %d elements", ErrMismatch, len(pairs), len(targets))
	}
	out := make([]float64, len(targets))
	for _, p := range pairs {
		v := p.Arr()
		if len(v) != 2 {
			return nil, ErrMismatch
		}
		i := v[0].Int()
		if i < 0 || i >= len(out) {
			return nil, ErrMismatch
		}
		out[i] = v[1].Num()
	}
	return out, nil
}

// renderTagged serializes doc with each target tagged by its index. The tags
// are removed again before returning.
func renderTagged(doc *html.Node, targets []*html.Node) (string, error) {
	saved := make([][]html.Attribute, len(targets))
	for i, t := range targets {
		saved[i] = append([]html.Attribute(nil), t.Attr...)
		dom.SetAttr(t, measureAttr, strconv.Itoa(i))
	}
	defer func() {
		for i, t := range targets {
			t.Attr = saved[i]
		}
	}()
	return dom.Render(doc)
}

func writeTemp(content string) (string, func(), error) {
	f, err := os.CreateTemp("", "pagetoc-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}
