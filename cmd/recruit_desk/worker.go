package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/recruit-desk/internal/events"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/notify"
	"github.com/jonathan/recruit-desk/internal/observability"
	"github.com/spf13/cobra"
)

var workerVerbose bool

var workerCmd = &cobra.Command{
	Use:   "notify-worker",
	Short: "Forward lifecycle events from RabbitMQ to Telegram",
	Long: `Consume match lifecycle events from the notification queue and post the
ones recruiters act on (interviews, offers, rejections, reverts) to Telegram.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().BoolVar(&workerVerbose, "verbose", false, "Print every consumed event")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required")
	}
	if !cfg.TelegramEnabled() {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}

	exchange := cfg.RabbitMQExchange
	if exchange == "" {
		exchange = events.DefaultExchange
	}
	bus, err := events.Dial(cfg.RabbitMQURL, exchange)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[NOTIFY] Consuming %s for chat %d", cfg.NotificationQueue, cfg.TelegramChatID)
	handler := forwardTo(notifier)
	if workerVerbose {
		handler = printing(observability.NewPrinter(cmd.OutOrStdout()), handler)
	}
	return bus.Consume(ctx, cfg.NotificationQueue, handler)
}

// printing echoes each event before handing it on.
func printing(p *observability.Printer, next func(context.Context, matching.Event) error) func(context.Context, matching.Event) error {
	return func(ctx context.Context, event matching.Event) error {
		p.PrintEvent(event)
		return next(ctx, event)
	}
}

// forwardTo adapts a publisher into a queue handler.
func forwardTo(p matching.Publisher) func(context.Context, matching.Event) error {
	return func(ctx context.Context, event matching.Event) error {
		if err := p.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to forward %s for match %s: %w", event.Type, event.MatchID, err)
		}
		return nil
	}
}
