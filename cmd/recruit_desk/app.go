package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/recruit-desk/internal/config"
	"github.com/jonathan/recruit-desk/internal/db"
	"github.com/jonathan/recruit-desk/internal/events"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/notify"
)

// loadConfig reads the environment and the optional --config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openDatabase connects to PostgreSQL. The caller closes the returned DB.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	database.RejectDuplicatePairs(!cfg.AllowDuplicateMatches)
	return database, nil
}

func engineOptions(cfg *config.Config) matching.Options {
	return matching.Options{
		EnforceStatusFlow: cfg.EnforceStatusFlow,
		AllowDuplicates:   cfg.AllowDuplicateMatches,
		BulkConcurrency:   cfg.BulkConcurrency,
		MaxWriteAttempts:  cfg.MaxWriteAttempts,
	}
}

// buildPublisher wires lifecycle events to the message bus when one is
// configured. Without a bus, Telegram notifications are sent in-process;
// with one, the notify worker delivers them from the queue instead.
func buildPublisher(cfg *config.Config) (matching.Publisher, func(), error) {
	var publishers matching.FanOut
	var closers []func()

	if cfg.RabbitMQURL != "" {
		exchange := cfg.RabbitMQExchange
		if exchange == "" {
			exchange = events.DefaultExchange
		}
		bus, err := events.Dial(cfg.RabbitMQURL, exchange)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[EVENTS] Publishing to exchange %s", exchange)
		publishers = append(publishers, bus)
		closers = append(closers, func() { _ = bus.Close() })
	} else if cfg.TelegramEnabled() {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[NOTIFY] Sending Telegram notifications to chat %d", cfg.TelegramChatID)
		publishers = append(publishers, notifier)
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(publishers) == 0 {
		return nil, closeAll, nil
	}
	return publishers, closeAll, nil
}
