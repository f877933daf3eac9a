// Package build renders a tree of pages to static HTML with their tables of
// contents filled in.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/pagetoc/internal/layout"
	"github.com/dgallion1/pagetoc/internal/page"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of building one page.
type Status string

const (
	StatusBuilt  Status = "built"
	StatusFailed Status = "failed"
)

// Result records what happened to one source file.
type Result struct {
	Source   string `json:"source"`
	Output   string `json:"output,omitempty"`
	Headings int    `json:"headings"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Builder processes pages below Root and writes them below Out, keeping the
// relative layout.
type Builder struct {
	Root     string
	Out      string
	Measurer layout.Measurer
	Options  page.Options
	Workers  int
	Reporter Reporter
	Log      *slog.Logger
}

// Discover expands slash-separated glob patterns, with ** support, against
// root and returns the matching page files in sorted order.
func Discover(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		pattern = path.Clean(filepath.ToSlash(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !page.IsSupportedExtension(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run builds files, given relative to Root. A page that fails is recorded in
// its Result and does not stop the others; only cancellation of ctx aborts
// the run.
func (b *Builder) Run(ctx context.Context, files []string) ([]Result, error) {
	log := b.Log
	if log == nil {
		log = slog.Default()
	}
	rep := b.Reporter
	if rep == nil {
		rep = NopReporter{}
	}
	workers := b.Workers
	if workers <= 0 {
		workers = 4
	}

	results := make([]Result, len(files))
	progress := make(chan string)
	done := make(chan struct{})
	rep.Start(len(files))
	go func() {
		defer close(done)
		n := 0
		for name := range progress {
			n++
			rep.Built(n, name)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range files {
		if ctx.Err() != nil {
			break
		}
		i, rel := i, rel
		g.Go(func() error {
			results[i] = b.buildOne(ctx, rel, log)
			progress <- rel
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			return nil
		})
	}
	err := g.Wait()
	close(progress)
	<-done
	rep.Finish()

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return results, fmt.Errorf("build canceled: %w", err)
	}
	return results, nil
}

func (b *Builder) buildOne(ctx context.Context, rel string, log *slog.Logger) Result {
	res := Result{Source: rel}
	fail := func(err error) Result {
		log.Error("page build failed", "source", rel, "error", err)
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}

	src, err := os.Open(filepath.Join(b.Root, filepath.FromSlash(rel)))
	if err != nil {
		return fail(err)
	}
	defer src.Close()

	processed, err := page.Process(ctx, src, rel, b.Measurer, b.Options, log)
	if err != nil {
		return fail(err)
	}
	out, err := processed.Render()
	if err != nil {
		return fail(err)
	}

	res.Output = filepath.Join(b.Out, filepath.FromSlash(page.OutputName(rel)))
	if err := os.MkdirAll(filepath.Dir(res.Output), 0o755); err != nil {
		return fail(err)
	}
	if err := os.WriteFile(res.Output, []byte(out), 0o644); err != nil {
		return fail(err)
	}

	res.Headings = processed.Controller.Index().Len()
	res.Status = StatusBuilt
	log.Debug("page built", "source", rel, "output", res.Output, "headings", res.Headings)
	return res
}

// Summary counts built and failed results.
func Summary(results []Result) (built, failed int) {
	for _, r := range results {
		switch r.Status {
		case StatusBuilt:
			built++
		case StatusFailed:
			failed++
		}
	}
	return built, failed
}

// Failures formats the failed results, one per line.
func Failures(results []Result) string {
	var lines []string
	for _, r := range results {
		if r.Status == StatusFailed {
			lines = append(lines, r.Source+": "+r.Error)
		}
	}
	return strings.Join(lines, "\n")
}
