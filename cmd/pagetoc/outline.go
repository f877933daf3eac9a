package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/pagetoc/internal/toc"
	"github.com/spf13/cobra"
)

func newOutlineCmd(root *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		htmlOutput bool
	)
	cmd := &cobra.Command{
		Use:   "outline FILE",
		Short: "Print the heading outline of a page",
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
			ctrl := res.Controller
			w := cmd.OutOrStdout()

			switch {
			case jsonOutput:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"title":   res.Title,
					"entries": ctrl.Index().Entries(),
					"outline": ctrl.Outline().Root.Children,
				})
			case htmlOutput:
				fmt.Fprintln(w, ctrl.Full())
				return nil
			}

			if ctrl.Index().Len() == 0 {
				fmt.Fprintln(w, "No headings found.")
				return nil
			}
			ctrl.Outline().Walk(func(n *toc.Node) {
				indent := strings.Repeat("  ", n.Depth()-1)
				fmt.Fprintf(w, "%s%s  #%s  y=%d\n", indent, n.Entry.Title, n.Entry.ID, n.Entry.Offset)
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output entries and outline as JSON")
	cmd.Flags().BoolVar(&htmlOutput, "html", false, "output the full outline panel HTML")
	cmd.MarkFlagsMutuallyExclusive("json", "html")
	return cmd
}
