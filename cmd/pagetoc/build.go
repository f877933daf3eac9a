package main

import (
	"fmt"

	"github.com/dgallion1/pagetoc/internal/build"
	"github.com/spf13/cobra"
)

func newBuildCmd(root *rootOptions) *cobra.Command {
	var (
		out     string
		dir     string
		workers int
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "build <glob>...",
		Short: "Render pages with their table of contents filled in",
		Long: `Builds every HTML and Markdown page matching the glob patterns (with **
support, relative to --root) into --out, keeping the directory layout.
Markdown pages are written as .html.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Root
			}
			log := root.logger(cmd.ErrOrStderr())

			files, err := build.Discover(dir, args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pages matched.")
				return nil
			}

			m, closeMeasurer := cfg.Measurer()
			defer closeMeasurer()

			var rep build.Reporter = build.NewReporter(cmd.ErrOrStderr())
			if quiet {
				rep = build.NopReporter{}
			}
			b := &build.Builder{
				Root:     dir,
				Out:      out,
				Measurer: m,
				Options:  pageOptions(cfg),
				Workers:  workers,
				Reporter: rep,
				Log:      log,
			}
			results, err := b.Run(cmd.Context(), files)
			if err != nil {
				return err
			}

			built, failed := build.Summary(results)
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages into %s\n", built, out)
			if failed > 0 {
				return fmt.Errorf("%d pages failed:\n%s", failed, build.Failures(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "site", "output directory")
	cmd.Flags().StringVar(&dir, "root", "", "source directory (defaults to the configured root)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "pages built concurrently")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide build progress")
	return cmd
}
