package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricofy/document-translator/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the recognised target-language names and codes",
		Long: `List every target-language value with a known translation code.
Any other value is passed to the translation provider unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCODE")
			for _, name := range language.Names() {
				fmt.Fprintf(w, "%s\t%s\n", name, language.Resolve(name))
			}
			return w.Flush()
		},
	}
}
