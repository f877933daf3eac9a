package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pagetoc/internal/smartquotes"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func newQuotesCmd() *cobra.Command {
	var htmlInput bool
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Rewrite straight quotes from stdin to stdout",
		Long: `Reads text from stdin and writes it back with straight quotes and
apostrophes replaced by curly quotes and primes. With --html the input is
an HTML fragment; text inside code, pre, script and style is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			w := cmd.OutOrStdout()
			if !htmlInput {
				_, err := io.WriteString(w, smartquotes.String(string(in)))
				return err
			}
			return rewriteFragment(w, string(in))
		},
	}
	cmd.Flags().BoolVar(&htmlInput, "html", false, "treat input as an HTML fragment")
	return cmd
}

func rewriteFragment(w io.Writer, src string) error {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return fmt.Errorf("parsing html: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	smartquotes.Element(body)
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("rendering html: %w", err)
		}
	}
	return nil
}
