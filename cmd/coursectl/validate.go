package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-courses/internal/catalog"
	"github.com/p-n-ai/pai-courses/internal/render"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func newValidateCmd() *cobra.Command {
	var components []string

	cmd := &cobra.Command{
		Use:   "validate <root>",
		Short: "Check messages, documents and their consistency",
		Long: `Loads every message file (schema checked) and every document, renders
each document with the built-in components, and reports missing titles,
cross-locale drift and pages without documents.

Warnings are printed; any error makes the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := site.DirSource{Root: args[0]}
			store, set, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			reg := render.Builtins(components...)
			var failed int
			for _, doc := range set.All() {
				if _, err := render.RenderSource(doc.Body, reg); err != nil {
					failed++
					fmt.Fprintf(out, "error %s: %v\n", doc.Path, err)
				}
			}

			issues := catalog.Check(store, set, site.Slugs(store, set))
			for _, issue := range issues {
				fmt.Fprintln(out, issue)
				if issue.Severity == catalog.SeverityError {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("validation failed: %d errors", failed)
			}
			if len(issues) == 0 {
				fmt.Fprintf(out, "ok: %d locales, %d documents\n", len(store.Locales()), set.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&components, "component", "c", nil, "client-side component names to accept as-is")
	return cmd
}
