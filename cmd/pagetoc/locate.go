package main

import (
	"fmt"
	"strings"

	"github.com/dgallion1/pagetoc/internal/toc"
	"github.com/spf13/cobra"
)

func newLocateCmd(root *rootOptions) *cobra.Command {
	var (
		y          int
		htmlOutput bool
	)
	cmd := &cobra.Command{
		Use:   "locate FILE",
		Short: "Print the breadcrumb for a scroll position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			res, err := processFile(cmd.Context(), cfg, args[0], root.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			path := res.Controller.Locate(y)
			w := cmd.OutOrStdout()
			if htmlOutput {
				fmt.Fprintln(w, toc.RenderBar(path))
				return nil
			}
			if len(path) == 0 {
				fmt.Fprintln(w, "No heading before this position.")
				return nil
			}
			titles := make([]string, len(path))
			for i, e := range path {
				titles[i] = e.Title
			}
			fmt.Fprintln(w, strings.Join(titles, " > "))
			return nil
		},
	}
	cmd.Flags().IntVar(&y, "y", 0, "scroll position in pixels")
	cmd.Flags().BoolVar(&htmlOutput, "html", false, "output the breadcrumb bar HTML")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}
