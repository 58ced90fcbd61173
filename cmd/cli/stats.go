package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shortyhq/shorty/cmd"
	"github.com/shortyhq/shorty/internal/config"
	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/services"
	"github.com/shortyhq/shorty/internal/storage"
)

// StatsCmd prints the click statistics for a code.
var StatsCmd = &cobra.Command{
	Use:   "stats [code]",
	Short: "Get statistics for a short link",
	Long:  `Prints the destination, click count and creation date for the given code.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(cobraCmd *cobra.Command, args []string) {
	code := args[0]

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

	link, err := linkService.GetLinkByCode(context.Background(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrShortCodeNotFound) {
			fmt.Printf("Error: code '%s' not found\n", code)
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Statistics for code: %s\n", code)
	fmt.Printf("Long URL: %s\n", link.LongURL)
	fmt.Printf("Short URL: %s\n", link.ShortURL)
	fmt.Printf("Total clicks: %d\n", link.Clicks)
	if events, ok := linkService.CountRecordedClicks(context.Background(), code); ok {
		fmt.Printf("Recorded events: %d\n", events)
	}
	fmt.Printf("Created at: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
}
