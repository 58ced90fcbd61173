package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/shortyhq/shorty/cmd"
	"github.com/shortyhq/shorty/internal/api"
	"github.com/shortyhq/shorty/internal/config"
	"github.com/shortyhq/shorty/internal/models"
	"github.com/shortyhq/shorty/internal/monitor"
	"github.com/shortyhq/shorty/internal/services"
	"github.com/shortyhq/shorty/internal/storage"
	"github.com/shortyhq/shorty/internal/workers"
)

// RunServerCmd starts the HTTP server, the click workers and the URL
// monitor, then blocks until a shutdown signal arrives.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Runs the short-link API server and its background processes.",
	Long: `Opens the configured storage backend, starts the asynchronous click
workers and the URL monitor, then serves the HTTP API.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		store, err := storage.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to open storage backend: %v", err)
		}
		log.Printf("Storage backend '%s' ready.", cfg.Storage.Backend)

		linkService := services.NewLinkService(store)

		// Click events flow through a buffered channel so redirects never
		// wait on analytics writes.
		clickEvents := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		api.ClickEventsChannel = clickEvents
		workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEvents, store)
		log.Printf("Click events channel initialized with buffer %d. %d worker(s) started.",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		monitorCtx, stopMonitor := context.WithCancel(context.Background())
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		urlMonitor := monitor.NewURLMonitor(store, monitorInterval)
		go urlMonitor.Start(monitorCtx)
		log.Printf("URL monitor started with interval %v.", monitorInterval)

		router := gin.Default()
		api.SetupRoutes(router, linkService, cfg)
		log.Println("API routes configured.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			log.Printf("Starting server on %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutdown signal received. Stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		// Closing the channel lets the workers drain the remaining events
		// and exit.
		stopMonitor()
		close(clickEvents)
		time.Sleep(1 * time.Second)

		if err := store.Close(); err != nil {
			log.Printf("Storage close error: %v", err)
		}
		log.Println("Server stopped cleanly.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
