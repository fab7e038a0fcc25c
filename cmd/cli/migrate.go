package main

import (
	"io/fs"
	"os"

	"github.com/nimasrn/bookkeeper/internal/config"
	"github.com/nimasrn/bookkeeper/migrations"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply, roll back or inspect goose migrations against the write database.

The migrations compiled into the binary are used unless --dir points at a directory on disk.`,
	Example: `  # Apply every pending migration
  bookkeeper migrate up --env=.env

  # Roll back the latest migration
  bookkeeper migrate down

  # Show applied and pending migrations from a checkout
  bookkeeper migrate status --dir=./migrations`,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.PersistentFlags().String("dir", "", "Read migrations from this directory instead of the embedded set")

	for _, sub := range []struct {
		command string
		short   string
	}{
		{pg.MigrateUp, "Apply every pending migration"},
		{pg.MigrateDown, "Roll back the latest migration"},
		{pg.MigrateStatus, "Print the state of every migration"},
	} {
		command := sub.command
		migrateCmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, command)
			},
		})
	}
}

func runMigrate(cmd *cobra.Command, command string) error {
	dir, _ := cmd.Flags().GetString("dir")

	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	return pg.Migrate(cmd.Context(), config.Get().PostgresWrite(), fsys, ".", command)
}
