package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dgallion1/pagetoc/internal/config"
	"github.com/dgallion1/pagetoc/internal/layout"
	"github.com/dgallion1/pagetoc/internal/page"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned for pages missing below the root directory.
var ErrNotFound = errors.New("page not found")

// cachedPage is a processed page together with its rendered HTML.
type cachedPage struct {
	result  *page.Result
	html    string
	modTime time.Time
}

// PageStore processes pages below a root directory on demand and caches the
// results until they expire or the file changes.
type PageStore struct {
	root     string
	measurer layout.Measurer
	opts     page.Options
	timeout  time.Duration
	cache    *cache.Cache
	group    singleflight.Group
	log      *slog.Logger
}

// NewPageStore creates a PageStore serving cfg.Root.
func NewPageStore(cfg *config.Config, m layout.Measurer, log *slog.Logger) *PageStore {
	return &PageStore{
		root:     cfg.Root,
		measurer: m,
		opts: page.Options{
			Smartquotes:    cfg.Smartquotes,
			LookAhead:      cfg.LookAhead,
			ExcludeClasses: cfg.ExcludeClasses,
			CodeStyle:      cfg.CodeStyle,
		},
		timeout: cfg.PageTimeout,
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		log:     log,
	}
}

// Get returns the processed page at rel, a slash-separated path below the
// root directory.
func (ps *PageStore) Get(ctx context.Context, rel string) (*cachedPage, error) {
	rel = path.Clean("/" + rel)
	if !page.IsSupportedExtension(rel) {
		return nil, fmt.Errorf("%w: %q", page.ErrUnsupported, path.Ext(rel))
	}

	file := filepath.Join(ps.root, filepath.FromSlash(rel))
	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}

	if v, ok := ps.cache.Get(rel); ok {
		if p := v.(*cachedPage); p.modTime.Equal(info.ModTime()) {
			return p, nil
		}
	}

	v, err, _ := ps.group.Do(rel, func() (any, error) {
		return ps.load(ctx, rel, file, info.ModTime())
	})
	if err != nil {
		return nil, err
	}
	return v.(*cachedPage), nil
}

func (ps *PageStore) load(ctx context.Context, rel, file string, modTime time.Time) (*cachedPage, error) {
	// Shared by every caller waiting on rel, so one caller going away must
	// not cancel it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ps.timeout)
	defer cancel()

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}
	defer f.Close()

	opts := ps.opts
	opts.Script = page.ClientScript("/ws" + rel)
	res, err := page.Process(ctx, f, rel, ps.measurer, opts, ps.log)
	if err != nil {
		return nil, err
	}
	out, err := res.Render()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rel, err)
	}

	p := &cachedPage{result: res, html: out, modTime: modTime}
	ps.cache.Set(rel, p, cache.DefaultExpiration)
	ps.log.Info("page cached", "page", rel, "headings", res.Controller.Index().Len())
	return p, nil
}

// Len returns the number of cached pages.
func (ps *PageStore) Len() int {
	return ps.cache.ItemCount()
}
