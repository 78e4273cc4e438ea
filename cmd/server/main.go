package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slabworks/card-pos/backend/internal/api"
	"github.com/slabworks/card-pos/backend/internal/config"
	"github.com/slabworks/card-pos/backend/internal/database"
	"github.com/slabworks/card-pos/backend/internal/metrics"
	"github.com/slabworks/card-pos/backend/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// External lookup clients
	psaService := services.NewPSAService(cfg.PSABaseURL, cfg.PSAAPIKey, cfg.PSAMinInterval)
	tcgClient := services.NewTCGClient(cfg.TCGBaseURL, cfg.TCGAPIKey, cfg.TCGMinInterval)
	searchService := services.NewSearchService(tcgClient)

	// Session + inventory layer
	sessionManager := services.NewSessionManager()
	inventoryService := services.NewInventoryService(database.GetDB())
	insightsService := services.NewInsightsService(database.GetDB())

	// Debounced cert prefetch: staging a slab warms the PSA cache
	certPrefetcher := services.NewCertPrefetcher(psaService)
	defer certPrefetcher.Stop()

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep inventory gauges current in the background
	go func() {
		metrics.UpdateInventoryMetrics(database.GetDB())
		ticker := time.NewTicker(cfg.MetricsRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateInventoryMetrics(database.GetDB())
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(psaService, searchService, sessionManager, inventoryService, insightsService, certPrefetcher, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
