/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the roster dashboard server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Build the logger
  3. Open the SQLite store and apply static role grants
  4. Wire the sheet upstream and background sync, if configured
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config   Path to the YAML config file (optional; env vars with the
            ROSTER_ prefix override file values)

DATA FLOW:
  Standalone:     handlers read and write the SQLite store directly.
  With upstream:  handlers talk to the sheet upstream; the sync loop
                  keeps the SQLite mirror warm as a local backup.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sync loop and close the database
  4. Exit

EXAMPLES:
  # Run standalone on SQLite
  ./server

  # Run against a sheet upstream
  ROSTER_SHEET_URL=https://script.example.com/exec ./server -config=prod.yaml

SEE ALSO:
  - config/config.go: Configuration shape and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Local store and mirror
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/schedule"
	"github.com/warp/roster-engine/sheet"
	"github.com/warp/roster-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Local store (always present; the mirror when an upstream is set)
	store, err := sqlite.New(cfg.Store.Path, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	// Static role grants from config
	for _, grant := range cfg.Roles {
		if err := store.SaveRole(context.Background(), grant.Email, grant.Role, grant.Permissions); err != nil {
			logger.Fatal("failed to save role grant",
				zap.String("email", grant.Email), zap.Error(err))
		}
	}

	handler := api.NewHandler(schedule.NewEngine(logger),
		store.Rosters(), store.Shifts(), store.AllocationSource(), store)
	handler.Perms = store
	handler.Roles = store
	handler.Seeder = store
	handler.Logger = logger

	// Sheet upstream: the sheet becomes the source of truth for records,
	// audit entries, and roles. The sync loop keeps the SQLite mirror warm
	// as a local backup and for offline inspection.
	var syncer *api.Syncer
	if cfg.Sheet.Enabled() {
		client := sheet.New(cfg.Sheet.URL, cfg.Sheet.Token, logger)
		handler.Rosters = client.Rosters()
		handler.Shifts = client.Shifts()
		handler.Allocations = client.Allocations()
		handler.Logs = client.Logs()
		handler.Roles = client
		handler.Perms = client
		handler.Seeder = nil // scenarios never touch production sheets

		syncer = api.NewSyncer(client.Rosters(), client.Shifts(), client.Allocations(), store, logger)
		if cfg.Sheet.SyncInterval > 0 {
			syncer.Interval = cfg.Sheet.SyncInterval
		}
		syncer.Start()
		defer syncer.Stop()
	}

	router := api.NewRouter(handler, cfg.Server.CORS.AllowOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("sheet_upstream", cfg.Sheet.Enabled()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
