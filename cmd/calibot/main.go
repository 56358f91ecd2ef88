// Command calibot runs the Telegram reminder bot.
//
// The bot walks a user through creating a reminder over chat, stores it as
// a Google Calendar event, and notifies the user when an event is about to
// start.
//
// Usage:
//
//	./calibot                      # run with ~/.calibot/config.yaml
//	./calibot -config custom.yaml  # run with a custom config file
//
// Environment:
//
//	TELEGRAM_BOT_TOKEN  Bot API token (overrides config)
//	CALIBOT_*           Per-key config overrides, e.g. CALIBOT_LOG_LEVEL
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CamiFraga/CaliBotUADE/internal/bot"
	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
	"github.com/CamiFraga/CaliBotUADE/internal/config"
	"github.com/CamiFraga/CaliBotUADE/internal/logging"
	"github.com/CamiFraga/CaliBotUADE/internal/notifier"
	"github.com/CamiFraga/CaliBotUADE/internal/telegram"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logging configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.Component("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("interrupted, shutting down")
		cancel()
	}()

	// Backend auth is the one startup step allowed to be fatal.
	backend, err := calendar.NewGoogle(ctx, cfg.Calendar)
	if err != nil {
		log.WithError(err).Fatal("failed to set up calendar backend")
	}

	tg := telegram.NewClient(cfg.Telegram.BotToken)

	recipient := bot.NewRecipient()
	if cfg.Telegram.ChatID != 0 {
		recipient.Set(cfg.Telegram.ChatID)
	}

	if cfg.Notifier.Enabled {
		seen, err := notifier.OpenSeenStore(cfg.Notifier.SeenDB)
		if err != nil {
			log.WithError(err).Fatal("failed to open notification store")
		}
		defer seen.Close()

		n := notifier.New(
			backend,
			tg,
			recipient,
			seen,
			time.Duration(cfg.Notifier.Interval)*time.Second,
			time.Duration(cfg.Notifier.Lookahead)*time.Second,
			time.Duration(cfg.Notifier.RetentionHours)*time.Hour,
		)
		go func() {
			if err := n.Run(ctx); err != nil {
				log.WithError(err).Error("notifier stopped")
			}
		}()
	}

	b := bot.New(tg, backend, recipient, cfg.Telegram.PollTimeout)
	if err := b.Run(ctx); err != nil {
		log.WithError(err).Fatal("bot stopped")
	}
}
