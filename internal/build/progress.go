package build

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives build progress. Built is called once per finished page,
// with done counting pages finished so far.
type Reporter interface {
	Start(total int)
	Built(done int, source string)
	Finish()
}

// NewReporter writes progress to w: a bar on a terminal, plain lines when
// running under CI.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineReporter{W: w}
	}
	return &BarReporter{W: w}
}

// BarReporter redraws a single progress bar.
type BarReporter struct {
	W   io.Writer
	bar *progressbar.ProgressBar
}

func (r *BarReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.W),
		progressbar.OptionSetDescription("pages"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *BarReporter) Built(done int, source string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(source)
	_ = r.bar.Set(done)
}

func (r *BarReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LineReporter writes one line per page, for logs that cannot redraw.
type LineReporter struct {
	W     io.Writer
	total int
}

func (r *LineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.W, "building %d pages\n", total)
}

func (r *LineReporter) Built(done int, source string) {
	fmt.Fprintf(r.W, "%s (%d/%d)\n", source, done, r.total)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.W, "finished %d pages\n", r.total)
}

// NopReporter discards progress.
type NopReporter struct{}

func (NopReporter) Start(int)         {}
func (NopReporter) Built(int, string) {}
func (NopReporter) Finish()           {}
