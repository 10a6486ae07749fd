// Command textchat drives the dialogue engine from the terminal: type an
// utterance, read the reply the caller would hear. Useful for exercising
// the full adapter stack without placing a phone call.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/WilliamZhang9/Call2Map/config"
	"github.com/WilliamZhang9/Call2Map/dialogue"
	"github.com/WilliamZhang9/Call2Map/intent"
	"github.com/WilliamZhang9/Call2Map/notify"
	"github.com/WilliamZhang9/Call2Map/places"
	"github.com/WilliamZhang9/Call2Map/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	directory, err := places.NewGoogleDirectory(cfg.GoogleMapsAPIKey)
	if err != nil {
		log.Fatalf("Failed to create place directory: %v", err)
	}
	extractor, err := intent.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create intent extractor: %v", err)
	}
	notifier := notify.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)

	store := session.NewStore(cfg)
	defer store.Shutdown()

	orchestrator := dialogue.New(store, extractor, directory, notifier, cfg.HistoryWindow, cfg.TurnTimeout)

	sessionID := uuid.New().String()
	caller := os.Getenv("TEXTCHAT_CALLER")
	if caller == "" {
		caller = cfg.TwilioPhoneNumber
	}

	fmt.Println("Type an utterance (ctrl-D to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		reply, keepListening := orchestrator.HandleTurn(ctx, sessionID, caller, scanner.Text())
		fmt.Printf("🤖 %s\n", reply)
		if !keepListening {
			break
		}
	}
}
