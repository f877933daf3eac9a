// Package tracker follows a reader's scroll position and keeps the floating
// breadcrumb bar in sync with the section being read.
//
// Scrolling hides the bar and the full outline panel almost immediately. Once
// scrolling stops, the breadcrumb is recomputed and the bar fades back in.
// Each reaction has its own debounce timer; every scroll resets all three.
package tracker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pagetoc/internal/debounce"
	"github.com/dgallion1/pagetoc/internal/toc"
)

// View is the page chrome the tracker drives.
type View interface {
	// Hide hides the breadcrumb bar and the full outline panel.
	Hide()
	// RenderBar replaces the breadcrumb bar content.
	RenderBar(fragment string)
	// Reveal shows the breadcrumb bar again.
	Reveal()
}

// Config holds the debounce windows.
type Config struct {
	HideDelay   time.Duration
	LocateDelay time.Duration
	RevealDelay time.Duration
}

// DefaultConfig returns the standard windows: hide after 10ms, locate after
// 800ms and reveal after 900ms of scroll inactivity.
func DefaultConfig() Config {
	return Config{
		HideDelay:   10 * time.Millisecond,
		LocateDelay: 800 * time.Millisecond,
		RevealDelay: 900 * time.Millisecond,
	}
}

// Tracker reacts to scroll and click events for one page view.
// View methods are never called concurrently.
type Tracker struct {
	ctrl *toc.Controller
	view View
	log  *slog.Logger

	mu       sync.Mutex
	position int
	closed   bool

	hide   *debounce.Debouncer
	locate *debounce.Debouncer
	reveal *debounce.Debouncer
}

// New creates a Tracker. Zero durations in cfg fall back to DefaultConfig.
func New(ctrl *toc.Controller, view View, cfg Config, log *slog.Logger) *Tracker {
	def := DefaultConfig()
	if cfg.HideDelay <= 0 {
		cfg.HideDelay = def.HideDelay
	}
	if cfg.LocateDelay <= 0 {
		cfg.LocateDelay = def.LocateDelay
	}
	if cfg.RevealDelay <= 0 {
		cfg.RevealDelay = def.RevealDelay
	}
	if log == nil {
		log = slog.Default()
	}

	t := &Tracker{ctrl: ctrl, view: view, log: log}
	t.hide = debounce.New(cfg.HideDelay, t.onHide)
	t.locate = debounce.New(cfg.LocateDelay, t.onLocate)
	t.reveal = debounce.New(cfg.RevealDelay, t.onReveal)
	return t
}

// Scroll records the new scroll position and resets all three timers.
func (t *Tracker) Scroll(position int) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.position = position
	t.mu.Unlock()

	t.hide.Call()
	t.locate.Call()
	t.reveal.Call()
}

// Click hides the bar and the full outline panel right away.
func (t *Tracker) Click() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.view.Hide()
}

// Close stops all pending timers. Later events are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.hide.Stop()
	t.locate.Stop()
	t.reveal.Stop()
}

func (t *Tracker) onHide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.view.Hide()
}

func (t *Tracker) onLocate() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	pos := t.position
	path := t.ctrl.Locate(pos)
	t.view.RenderBar(toc.RenderBar(path))
	t.mu.Unlock()

	t.log.Debug("located section", "position", pos, "depth", len(path))
	// The bar fades in a full reveal window after the breadcrumb changes.
	t.reveal.Call()
}

func (t *Tracker) onReveal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.view.Reveal()
}
