package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-courses/internal/catalog"
	"github.com/p-n-ai/pai-courses/internal/locale"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <root>",
		Short: "Write a translation coverage workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := locale.LoadDir(site.DirSource{Root: args[0]}.LocalesDir())
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := catalog.ExportCoverage(store, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d locales)\n", output, len(store.Locales()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "coverage.xlsx", "workbook path")
	return cmd
}
