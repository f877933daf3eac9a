package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/pagetoc/internal/config"
	"github.com/dgallion1/pagetoc/internal/page"
	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

type rootOptions struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "pagetoc",
		Short: "Tables of contents and smart quotes for static pages",
		Long: `pagetoc indexes the headings of HTML and Markdown pages, builds their
outline, fills in a floating breadcrumb bar and a full table of contents,
and rewrites straight quotes into typographic ones.`,
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "pagetoc.yml", "config file path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newBuildCmd(opts),
		newOutlineCmd(opts),
		newLocateCmd(opts),
		newQuotesCmd(),
	)
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// processFile runs the page pipeline over one file with the configured
// measurer.
func processFile(ctx context.Context, cfg *config.Config, file string, log *slog.Logger) (*page.Result, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, closeMeasurer := cfg.Measurer()
	defer func() {
		if err := closeMeasurer(); err != nil {
			log.Warn("closing layout measurer", "error", err)
		}
	}()

	return page.Process(ctx, f, file, m, pageOptions(cfg), log)
}

func pageOptions(cfg *config.Config) page.Options {
	return page.Options{
		Smartquotes:    cfg.Smartquotes,
		LookAhead:      cfg.LookAhead,
		ExcludeClasses: cfg.ExcludeClasses,
		CodeStyle:      cfg.CodeStyle,
	}
}
