package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shortyhq/shorty/internal/config"
)

// Cfg holds the loaded configuration, available to every subcommand.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, create, stats,
// migrate) register themselves through their own init() functions, which
// keeps the packages decoupled and avoids import cycles.
var RootCmd = &cobra.Command{
	Use:   "shorty",
	Short: "A short-link registry",
	Long: `Shorty maps short codes to destination URLs, resolves them with
click accounting, and records access events, over interchangeable
storage backends (SQLite, local file, remote table).`,
}

// Execute runs the CLI. Called from main.go.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the configuration before any subcommand runs.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
