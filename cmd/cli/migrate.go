package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shortyhq/shorty/cmd"
	"github.com/shortyhq/shorty/internal/config"
	"github.com/shortyhq/shorty/internal/storage"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `Connects to the configured SQLite database and runs the automatic
migrations for the 'links' and 'clicks' tables. The file and table
backends are schemaless and need no migration.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		if cfg.Storage.Backend != config.BackendSQLite {
			fmt.Printf("Backend '%s' requires no migration.\n", cfg.Storage.Backend)
			return
		}

		// Opening the store runs the migrations.
		store, err := storage.NewGormStore(cfg.Storage.SQLiteName)
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		defer store.Close()

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
