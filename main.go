package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WilliamZhang9/Call2Map/config"
	"github.com/WilliamZhang9/Call2Map/dialogue"
	"github.com/WilliamZhang9/Call2Map/intent"
	"github.com/WilliamZhang9/Call2Map/notify"
	"github.com/WilliamZhang9/Call2Map/places"
	"github.com/WilliamZhang9/Call2Map/server"
	"github.com/WilliamZhang9/Call2Map/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the adapters
	directory, err := places.NewGoogleDirectory(cfg.GoogleMapsAPIKey)
	if err != nil {
		log.Fatalf("Failed to create place directory: %v", err)
	}
	extractor, err := intent.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create intent extractor: %v", err)
	}
	notifier := notify.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)

	// Session store with idle cleanup
	store := session.NewStore(cfg)
	go store.StartCleanupRoutine(ctx)

	orchestrator := dialogue.New(store, extractor, directory, notifier, cfg.HistoryWindow, cfg.TurnTimeout)
	srv := server.New(cfg, store, orchestrator)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		cancel()
		store.Shutdown()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("📞 Phone Number: %s", cfg.TwilioPhoneNumber)
	log.Printf("🌐 Base URL: %s", cfg.BaseURL)

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
