// Command coursectl checks, inspects and publishes a course content root:
//
//	<root>/locales/<locale>.json|.yaml
//	<root>/courses/[courses.yaml]
//	<root>/courses/<course>/[course.yaml]
//	<root>/courses/<course>/<section>/<locale>.mdx
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var errUsage = errors.New("invalid arguments")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "coursectl",
		Short:        "Validate, inspect and publish course content",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log loading details")

	root.AddCommand(
		newValidateCmd(),
		newLookupCmd(),
		newRenderCmd(),
		newExportCmd(),
		newPublishCmd(),
	)
	return root
}
