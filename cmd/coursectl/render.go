package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/render"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func newRenderCmd() *cobra.Command {
	var components []string

	cmd := &cobra.Command{
		Use:   "render <root> <course> <section> <locale>",
		Short: "Render one section as JSON",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := content.LoadDir(site.DirSource{Root: args[0]}.CoursesDir())
			if err != nil {
				return err
			}
			doc, err := set.Document(args[1], args[2], args[3])
			if err != nil {
				return err
			}
			page, err := render.RenderSource(doc.Body, render.Builtins(components...))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		},
	}
	cmd.Flags().StringSliceVarP(&components, "component", "c", nil, "client-side component names to accept as-is")
	return cmd
}
