package tracker

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/pagetoc/internal/toc"
)

type event struct {
	kind string
	html string
	at   time.Time
}

type recordingView struct {
	mu     sync.Mutex
	events []event
}

func (v *recordingView) add(kind, html string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, event{kind: kind, html: html, at: time.Now()})
}

func (v *recordingView) Hide()              { v.add("hide", "") }
func (v *recordingView) RenderBar(s string) { v.add("bar", s) }
func (v *recordingView) Reveal()            { v.add("reveal", "") }

func (v *recordingView) of(kind string) []event {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []event
	for _, e := range v.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func testController() *toc.Controller {
	return toc.NewController(toc.NewIndex([]toc.Entry{
		{Offset: 100, Level: 1, ID: "intro", Title: "Intro"},
		{Offset: 600, Level: 2, ID: "setup", Title: "Setup"},
		{Offset: 1200, Level: 3, ID: "linux", Title: "Linux"},
	}), toc.DefaultLookAhead)
}

// fastConfig keeps the real ratios between windows at a tenth of the scale.
func fastConfig() Config {
	return Config{
		HideDelay:   5 * time.Millisecond,
		LocateDelay: 80 * time.Millisecond,
		RevealDelay: 90 * time.Millisecond,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HideDelay != 10*time.Millisecond || cfg.LocateDelay != 800*time.Millisecond || cfg.RevealDelay != 900*time.Millisecond {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestTracker_HidesQuicklyWhileScrolling(t *testing.T) {
	view := &recordingView{}
	tr := New(testController(), view, fastConfig(), nil)
	defer tr.Close()

	start := time.Now()
	tr.Scroll(0)
	time.Sleep(50 * time.Millisecond)

	hides := view.of("hide")
	if len(hides) == 0 {
		t.Fatal("expected the bar to be hidden shortly after scrolling")
	}
	if len(view.of("reveal")) != 0 || len(view.of("bar")) != 0 {
		t.Error("expected no reveal or breadcrumb before scrolling settles")
	}
	if d := hides[0].at.Sub(start); d > 45*time.Millisecond {
		t.Errorf("hide took %v", d)
	}
}

func TestTracker_RevealsOnlyAfterScrollingStops(t *testing.T) {
	view := &recordingView{}
	tr := New(testController(), view, fastConfig(), nil)
	defer tr.Close()

	var last time.Time
	for pos := 0; pos <= 1100; pos += 100 {
		tr.Scroll(pos)
		last = time.Now()
		time.Sleep(20 * time.Millisecond)
	}
	if len(view.of("reveal")) != 0 {
		t.Fatal("expected no reveal while scrolling")
	}

	time.Sleep(400 * time.Millisecond)

	bars := view.of("bar")
	if len(bars) != 1 {
		t.Fatalf("expected one breadcrumb render, got %d", len(bars))
	}
	if !strings.Contains(bars[0].html, `href="#linux"`) {
		t.Errorf("expected breadcrumb for final position, got %s", bars[0].html)
	}

	reveals := view.of("reveal")
	if len(reveals) != 1 {
		t.Fatalf("expected one reveal, got %d", len(reveals))
	}
	if idle := reveals[0].at.Sub(last); idle < fastConfig().RevealDelay {
		t.Errorf("revealed after only %v of inactivity", idle)
	}
	if reveals[0].at.Before(bars[0].at) {
		t.Error("expected reveal after the breadcrumb was rendered")
	}
}

func TestTracker_EmptyBreadcrumbBeforeFirstHeading(t *testing.T) {
	view := &recordingView{}
	tr := New(testController(), view, fastConfig(), nil)
	defer tr.Close()

	tr.Scroll(-500)
	time.Sleep(150 * time.Millisecond)

	bars := view.of("bar")
	if len(bars) != 1 {
		t.Fatalf("expected one render, got %d", len(bars))
	}
	if bars[0].html != toc.RenderBar(nil) {
		t.Errorf("expected empty breadcrumb, got %s", bars[0].html)
	}
}

func TestTracker_ClickHidesImmediately(t *testing.T) {
	view := &recordingView{}
	tr := New(testController(), view, fastConfig(), nil)
	defer tr.Close()

	tr.Click()
	if len(view.of("hide")) != 1 {
		t.Error("expected click to hide synchronously")
	}
}

func TestTracker_CloseCancelsTimers(t *testing.T) {
	view := &recordingView{}
	tr := New(testController(), view, fastConfig(), nil)

	tr.Scroll(700)
	tr.Close()
	tr.Scroll(800)
	tr.Click()
	time.Sleep(200 * time.Millisecond)

	view.mu.Lock()
	n := len(view.events)
	view.mu.Unlock()
	if n != 0 {
		t.Errorf("expected no view updates after Close, got %d", n)
	}
}
