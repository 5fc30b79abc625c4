package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/platform/config"
	"github.com/p-n-ai/pai-courses/internal/platform/database"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func newPublishCmd() *cobra.Command {
	var dbURL string

	cmd := &cobra.Command{
		Use:   "publish <root>",
		Short: "Replace the documents stored in Postgres",
		Long: `Loads every document under <root>/courses and replaces the published set
in one transaction. Servers running with LEARN_CONTENT_SOURCE=postgres pick it
up on their next reload.

The database URL defaults to LEARN_DATABASE_URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dbURL != "" {
				cfg.Database.URL = dbURL
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("%w: --database-url or LEARN_DATABASE_URL is required", errUsage)
			}

			set, err := content.LoadDir(site.DirSource{Root: args[0]}.CoursesDir())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.New(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			store, err := content.NewPostgresStore(db.Pool)
			if err != nil {
				return err
			}
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			if err := store.Publish(ctx, set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d documents in %d courses\n", set.Len(), len(set.Courses()))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbURL, "database-url", "", "PostgreSQL URL (default $LEARN_DATABASE_URL)")
	return cmd
}
