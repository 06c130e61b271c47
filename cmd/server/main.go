package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/clock"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/config"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/db"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/db/repository"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/metrics"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/router"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/service"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := db.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.Migrate(cfg.Database); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize WebSocket hub
	hub := websockets.NewHub()
	go hub.Run()

	// Wire services
	repos := repository.NewRepositories(database)
	stores := service.NewStores(repos)
	clk := clock.System{}
	collector := metrics.NewCollector()

	notifications := service.NewNotificationService(stores, clk, hub)
	timers := service.NewTimerService(stores, clk)
	kitchen := service.NewKitchenService(stores, clk, timers, notifications, collector)
	capacity := service.NewCapacityService(stores, cfg.Kitchen.MaxCapacity, notifications, collector)
	auth := service.NewAuthService(stores, service.JWTConfig{
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.JWT.ExpiresIn,
	})

	// Initialize router
	r := router.New(database, router.Services{
		Kitchen:       kitchen,
		Timers:        timers,
		Capacity:      capacity,
		Notifications: notifications,
		Auth:          auth,
	}, hub, collector)

	// Background sweeps run until shutdown
	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	defer stopSweeps()
	go runSweep(sweepCtx, cfg.Kitchen.SweepInterval, kitchen, capacity)
	go runCleanup(sweepCtx, cfg.Kitchen.CleanupInterval, notifications)

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopSweeps()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// runSweep periodically flags overdue orders and checks kitchen load.
func runSweep(ctx context.Context, interval time.Duration, kitchen *service.KitchenService, capacity *service.CapacityService) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := kitchen.CheckForOverdueOrders(ctx); err != nil {
				log.Printf("Overdue sweep failed: %v", err)
			}
			if _, err := capacity.CheckThresholds(ctx); err != nil {
				log.Printf("Capacity check failed: %v", err)
			}
		}
	}
}

// runCleanup periodically purges expired and stale notifications.
func runCleanup(ctx context.Context, interval time.Duration, notifications *service.NotificationService) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := notifications.Cleanup(ctx); err != nil {
				log.Printf("Notification cleanup failed: %v", err)
			}
		}
	}
}
