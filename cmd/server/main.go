package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/koiseka/bm-companion/internal/api"
	"github.com/koiseka/bm-companion/internal/cart"
	"github.com/koiseka/bm-companion/internal/catalog"
	"github.com/koiseka/bm-companion/internal/database"
	"github.com/koiseka/bm-companion/internal/prices"
	"github.com/koiseka/bm-companion/internal/wishlist"
)

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./bm_companion.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Catalog feed
	feedURL := os.Getenv("CATALOG_FEED_URL")
	if feedURL == "" {
		log.Fatal("CATALOG_FEED_URL must be set")
	}
	catalogService := catalog.NewService(database.GetDB(), feedURL)

	// Storefront cart
	storeBaseURL := os.Getenv("STORE_BASE_URL")
	if storeBaseURL == "" {
		log.Fatal("STORE_BASE_URL must be set")
	}
	cartClient := cart.NewHTTPClient(storeBaseURL)

	// Price API (optional; resolution works without prices)
	var priceProvider prices.Provider
	if priceAPIURL := os.Getenv("PRICE_API_URL"); priceAPIURL != "" {
		priceProvider = prices.NewClient(priceAPIURL)
	} else {
		log.Println("PRICE_API_URL not set, price lookups disabled")
	}

	// Delay between cart submissions
	submitDelay := 100 * time.Millisecond
	if delayStr := os.Getenv("SUBMIT_DELAY_MS"); delayStr != "" {
		if ms, err := strconv.Atoi(delayStr); err == nil && ms > 0 {
			submitDelay = time.Duration(ms) * time.Millisecond
		}
	}

	wishlistService := wishlist.NewService(database.GetDB(), cartClient, 300*time.Millisecond)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the catalog before serving; a companion with no catalog can't
	// match anything.
	if err := catalogService.Load(ctx); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Keep the catalog fresh in the background
	go catalogService.StartRefresher(ctx, time.Hour)

	// Setup router
	router := api.SetupRouter(catalogService, priceProvider, cartClient, wishlistService, submitDelay)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the catalog refresher
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
