package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-courses/internal/locale"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <root> <locale> <key>",
		Short:   "Print one message",
		Example: "  coursectl lookup ./content en challenges.anchor-vault.title",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := locale.LoadDir(site.DirSource{Root: args[0]}.LocalesDir())
			if err != nil {
				return err
			}
			value, err := store.Lookup(args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}
