package build

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/pagetoc/internal/layout"
	"github.com/dgallion1/pagetoc/internal/page"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html":             "<h1>Home</h1>",
		"docs/guide.md":          "# Guide",
		"docs/deep/ref.markdown": "# Ref",
		"docs/notes.txt":         "skip me",
	})

	files, err := Discover(root, []string{"**/*"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"docs/deep/ref.markdown", "docs/guide.md", "index.html"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", files, want)
	}

	files, err = Discover(root, []string{"docs/*.md", "./docs/*.md"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0] != "docs/guide.md" {
		t.Errorf("expected deduplicated single match, got %v", files)
	}

	if _, err := Discover(root, []string{"docs/[.md"}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestRun(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html":    "<h1>Home</h1><p>It's here.</p><h2>More</h2>",
		"docs/guide.md": "# Guide\n\n## Install\n\n## Use\n",
	})
	out := t.TempDir()

	var progress bytes.Buffer
	b := &Builder{
		Root:     root,
		Out:      out,
		Measurer: layout.NewEstimator(),
		Options:  page.Options{Smartquotes: true, LookAhead: -1},
		Workers:  2,
		Reporter: &LineReporter{W: &progress},
	}
	results, err := b.Run(context.Background(), []string{"docs/guide.md", "index.html", "missing.html"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	built, failed := Summary(results)
	if built != 2 || failed != 1 {
		t.Fatalf("built=%d failed=%d, results %+v", built, failed, results)
	}
	if results[0].Headings != 3 || results[1].Headings != 2 {
		t.Errorf("heading counts %d, %d", results[0].Headings, results[1].Headings)
	}
	if !strings.Contains(Failures(results), "missing.html") {
		t.Errorf("failures = %q", Failures(results))
	}

	guide, err := os.ReadFile(filepath.Join(out, "docs", "guide.html"))
	if err != nil {
		t.Fatalf("expected markdown output renamed to .html: %v", err)
	}
	if !strings.Contains(string(guide), `<h2 id="install">Install</h2>`) {
		t.Error("expected slugged heading in built guide")
	}
	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(index), "It’s here.") {
		t.Error("expected smart quotes in built index")
	}

	if !strings.HasPrefix(progress.String(), "building 3 pages\n") || !strings.Contains(progress.String(), "(3/3)") {
		t.Errorf("progress output %q", progress.String())
	}
}

func TestRun_Canceled(t *testing.T) {
	root := writeTree(t, map[string]string{"index.html": "<h1>Home</h1>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Builder{Root: root, Out: t.TempDir(), Measurer: layout.NewEstimator()}
	if _, err := b.Run(ctx, []string{"index.html"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
