package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultJWTExpirationHours is used when JWT_EXPIRATION_HOURS is unset
const DefaultJWTExpirationHours = 24

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS.
func NewJWTConfig() (*JWTConfig, error) {
	return jwtConfigFrom(os.Getenv)
}

func jwtConfigFrom(getenv func(string) string) (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          getenv("JWT_SECRET"),
		ExpirationHours: DefaultJWTExpirationHours,
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	if raw := getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
		}
		cfg.ExpirationHours = hours
	}

	if cfg.ExpirationHours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", cfg.ExpirationHours)
	}
	return cfg, nil
}
