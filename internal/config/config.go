package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"tgrelay/internal/constants"
	"tgrelay/internal/models"
)

var (
	ErrMissingAPIBaseURL = models.ConfigError{Message: "missing Telegram API base URL"}
	ErrMissingAdminChat  = models.ConfigError{Message: "missing admin chat ID"}
	ErrMissingDBPath     = models.ConfigError{Message: "missing database path"}
)

func LoadConfig(path string) (*models.Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Telegram.APIBaseURL == "" {
		return ErrMissingAPIBaseURL
	}
	if c.Telegram.AdminChatID == 0 {
		return ErrMissingAdminChat
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	switch c.Relay.Mode {
	case "":
		c.Relay.Mode = models.RelayModeQueue
	case models.RelayModeQueue, models.RelayModeImmediate:
	default:
		return models.ConfigError{Message: fmt.Sprintf("invalid relay mode %q (want %q or %q)", c.Relay.Mode, models.RelayModeQueue, models.RelayModeImmediate)}
	}

	if c.Relay.DrainBatchSize <= 0 {
		c.Relay.DrainBatchSize = constants.DefaultDrainBatchSize
	}
	if c.Relay.DrainIntervalSec <= 0 {
		c.Relay.DrainIntervalSec = constants.DefaultDrainIntervalSec
	}
	if c.Relay.DrainPauseSec <= 0 {
		c.Relay.DrainPauseSec = constants.DefaultDrainPauseSec
	}
	if c.Relay.LedgerTTLHours <= 0 {
		c.Relay.LedgerTTLHours = constants.DefaultLedgerTTLHours
	}
	if c.Relay.JanitorIntervalMin <= 0 {
		c.Relay.JanitorIntervalMin = constants.DefaultJanitorIntervalMin
	}

	if c.Telegram.TimeoutSec <= 0 {
		c.Telegram.TimeoutSec = constants.DefaultHTTPTimeoutSec
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Server.RateLimitPerMinute <= 0 {
		c.Server.RateLimitPerMinute = constants.DefaultWebhookRateLimitPerMin
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultBackoffInitialMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultBackoffMaxMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultBackoffMaxAttempts
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "tgrelay"
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("TGRELAY_API_BASE_URL"); url != "" {
		c.Telegram.APIBaseURL = url
	}

	// SECURITY: the webhook secret should be set via environment variables
	if secret := os.Getenv("TGRELAY_WEBHOOK_SECRET"); secret != "" {
		c.Telegram.WebhookSecret = secret
	}

	if admin := os.Getenv("TGRELAY_ADMIN_CHAT_ID"); admin != "" {
		if id, err := strconv.ParseInt(admin, 10, 64); err == nil {
			c.Telegram.AdminChatID = id
		}
	}

	if path := os.Getenv("TGRELAY_DB_PATH"); path != "" {
		c.Database.Path = path
	}
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	isProduction := os.Getenv("TGRELAY_ENV") == "production"

	if isProduction {
		if c.Telegram.WebhookSecret == "" {
			return models.ConfigError{Message: "webhook secret is required in production (set TGRELAY_WEBHOOK_SECRET environment variable)"}
		}
		if len(c.Telegram.WebhookSecret) < 32 {
			return models.ConfigError{Message: "webhook secret must be at least 32 characters long"}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
	} else if c.Telegram.WebhookSecret == "" {
		fmt.Fprintf(os.Stderr, "WARNING: webhook secret not set. Set TGRELAY_WEBHOOK_SECRET environment variable for security.\n")
	}

	return nil
}
