// Package page loads HTML and Markdown pages and applies the quote rewriter
// and table of contents to them.
package page

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnsupported is returned for files that are neither HTML nor Markdown.
var ErrUnsupported = errors.New("unsupported file extension")

// Loader converts raw page bytes into an HTML document tree.
type Loader interface {
	Load(r io.Reader, filename string) (*html.Node, error)
}

// SupportedExtensions lists file extensions this package can load.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate loader for a filename.
func ForFile(filename string) (Loader, error) {
	return loaderFor(filename, DefaultCodeStyle)
}

func loaderFor(filename, codeStyle string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return NewMarkdownLoader(codeStyle), nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// OutputName maps a source file name to the name of its rendered page.
func OutputName(filename string) string {
	ext := filepath.Ext(filename)
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return strings.TrimSuffix(filename, ext) + ".html"
	}
	return filename
}
