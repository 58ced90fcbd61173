package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shortyhq/shorty/cmd"
	"github.com/shortyhq/shorty/internal/config"
	"github.com/shortyhq/shorty/internal/services"
	"github.com/shortyhq/shorty/internal/storage"
)

var (
	longURLFlag string
	aliasFlag   string
)

// CreateCmd shortens a URL from the command line.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a short link from a long URL.",
	Long: `Shortens the given long URL and prints the resulting code.

Examples:
  shorty create --url="https://www.google.com/search?q=go+lang"
  shorty create --url="https://example.com" --alias="my link"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if longURLFlag == "" {
			fmt.Println("Error: --url flag is required")
			os.Exit(1)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		store, err := storage.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to open storage backend: %v", err)
		}
		defer store.Close()

		linkService := services.NewLinkService(store)

		base := cfg.Server.BaseURL
		if base == "" {
			base = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}

		link, err := linkService.CreateLink(context.Background(), longURLFlag, aliasFlag, "", base)
		if err != nil {
			log.Fatalf("Failed to create short link: %v", err)
		}

		fmt.Printf("Short link created:\n")
		fmt.Printf("Code: %s\n", link.Code)
		fmt.Printf("Full URL: %s\n", link.ShortURL)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&aliasFlag, "alias", "", "Optional custom alias for the code")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
