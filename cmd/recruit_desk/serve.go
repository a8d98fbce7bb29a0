package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/recruit-desk/internal/config"
	"github.com/jonathan/recruit-desk/internal/drafting"
	"github.com/jonathan/recruit-desk/internal/llm"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/server"
	"github.com/jonathan/recruit-desk/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the match lifecycle over REST.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	publisher, closePublisher, err := buildPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := server.Deps{
		Engine:   matching.NewEngine(database, publisher, engineOptions(cfg)),
		Database: database,
	}

	if cfg.GeminiAPIKey != "" {
		llmConfig := llm.DefaultConfig()
		if cfg.GeminiModel != "" {
			llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.GeminiModel)
		}
		client, err := llm.NewGeminiClient(ctx, llmConfig, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		deps.Drafter = drafting.New(client)
	} else {
		log.Println("[SERVER] GEMINI_API_KEY not set; drafting endpoints are disabled")
	}

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		JWT:       jwtConfig,
		RateLimit: ratelimit.LoadConfig(),
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
