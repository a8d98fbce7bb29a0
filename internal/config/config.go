// Package config loads service configuration from the environment and an
// optional JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults applied after merging
const (
	DefaultPort              = 8080
	DefaultBulkConcurrency   = 8
	DefaultNotificationQueue = "recruit_desk.notifications"
)

// Config is the service configuration. Every field can come from the JSON
// file or the matching environment variable; the environment wins.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // DATABASE_URL
	Port        int    `json:"port,omitempty"`         // PORT

	RabbitMQURL       string `json:"rabbitmq_url,omitempty"`       // RABBITMQ_URL
	RabbitMQExchange  string `json:"rabbitmq_exchange,omitempty"`  // RABBITMQ_EXCHANGE
	NotificationQueue string `json:"notification_queue,omitempty"` // NOTIFICATION_QUEUE

	TelegramBotToken string `json:"telegram_bot_token,omitempty"` // TELEGRAM_BOT_TOKEN
	TelegramChatID   int64  `json:"telegram_chat_id,omitempty"`   // TELEGRAM_CHAT_ID

	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // GEMINI_API_KEY
	GeminiModel  string `json:"gemini_model,omitempty"`   // GEMINI_MODEL

	// Lifecycle engine
	EnforceStatusFlow     bool `json:"enforce_status_flow,omitempty"`     // ENFORCE_STATUS_FLOW
	AllowDuplicateMatches bool `json:"allow_duplicate_matches,omitempty"` // ALLOW_DUPLICATE_MATCHES
	BulkConcurrency       int  `json:"bulk_concurrency,omitempty"`        // BULK_CONCURRENCY
	MaxWriteAttempts      int  `json:"max_write_attempts,omitempty"`      // MAX_WRITE_ATTEMPTS
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. Malformed
// numbers and booleans are reported rather than ignored.
func FromEnv() (*Config, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getenv("DATABASE_URL"),
		RabbitMQURL:       getenv("RABBITMQ_URL"),
		RabbitMQExchange:  getenv("RABBITMQ_EXCHANGE"),
		NotificationQueue: getenv("NOTIFICATION_QUEUE"),
		TelegramBotToken:  getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:      getenv("GEMINI_API_KEY"),
		GeminiModel:       getenv("GEMINI_MODEL"),
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &cfg.Port},
		{"BULK_CONCURRENCY", &cfg.BulkConcurrency},
		{"MAX_WRITE_ATTEMPTS", &cfg.MaxWriteAttempts},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(getenv(f.key))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = v
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"ENFORCE_STATUS_FLOW", &cfg.EnforceStatusFlow},
		{"ALLOW_DUPLICATE_MATCHES", &cfg.AllowDuplicateMatches},
	}
	for _, f := range bools {
		raw := strings.TrimSpace(getenv(f.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = v
	}

	if raw := strings.TrimSpace(getenv("TELEGRAM_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, nil
}

// MergeWithDefaults returns a copy of c with zero fields filled from defaults.
// Booleans are OR-ed since an unset flag cannot be told apart from false.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	strs := []struct {
		dst *string
		def string
	}{
		{&result.DatabaseURL, defaults.DatabaseURL},
		{&result.RabbitMQURL, defaults.RabbitMQURL},
		{&result.RabbitMQExchange, defaults.RabbitMQExchange},
		{&result.NotificationQueue, defaults.NotificationQueue},
		{&result.TelegramBotToken, defaults.TelegramBotToken},
		{&result.GeminiAPIKey, defaults.GeminiAPIKey},
		{&result.GeminiModel, defaults.GeminiModel},
	}
	for _, f := range strs {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.BulkConcurrency == 0 {
		result.BulkConcurrency = defaults.BulkConcurrency
	}
	if result.MaxWriteAttempts == 0 {
		result.MaxWriteAttempts = defaults.MaxWriteAttempts
	}
	if result.TelegramChatID == 0 {
		result.TelegramChatID = defaults.TelegramChatID
	}

	result.EnforceStatusFlow = result.EnforceStatusFlow || defaults.EnforceStatusFlow
	result.AllowDuplicateMatches = result.AllowDuplicateMatches || defaults.AllowDuplicateMatches

	return result
}

// Load builds the effective configuration: environment first, then the JSON
// file at path (if any), then built-in defaults. The result is validated.
func Load(path string) (*Config, error) {
	env, err := FromEnv()
	if err != nil {
		return nil, err
	}

	merged := *env
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = env.MergeWithDefaults(*file)
	}
	merged = merged.MergeWithDefaults(Config{
		Port:              DefaultPort,
		BulkConcurrency:   DefaultBulkConcurrency,
		NotificationQueue: DefaultNotificationQueue,
	})

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks value ranges and settings that only make sense together.
// It does not require DATABASE_URL; commands that need it check themselves.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.BulkConcurrency < 0 {
		return fmt.Errorf("config error: 'bulk_concurrency' must be non-negative")
	}
	if c.MaxWriteAttempts < 0 {
		return fmt.Errorf("config error: 'max_write_attempts' must be non-negative")
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("config error: 'telegram_chat_id' is required when a telegram bot token is set")
	}
	if c.RabbitMQURL != "" && !strings.HasPrefix(c.RabbitMQURL, "amqp://") && !strings.HasPrefix(c.RabbitMQURL, "amqps://") {
		return fmt.Errorf("config error: 'rabbitmq_url' must use the amqp or amqps scheme")
	}
	return nil
}

// TelegramEnabled reports whether chat notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
