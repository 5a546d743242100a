package models

// Config holds the application configuration
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Relay    RelayConfig    `json:"relay"`
	Retry    RetryConfig    `json:"retry"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}

// TelegramConfig holds Bot API related configuration. The bot token is
// never read from the config file, only from the environment.
type TelegramConfig struct {
	APIBaseURL    string `json:"api_base_url"`
	AdminChatID   int64  `json:"admin_chat_id"`
	WebhookSecret string `json:"webhook_secret"`
	TimeoutSec    int    `json:"timeout_sec"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               int `json:"port"`
	ReadTimeoutSec     int `json:"read_timeout_sec"`
	WriteTimeoutSec    int `json:"write_timeout_sec"`
	IdleTimeoutSec     int `json:"idle_timeout_sec"`
	RateLimitPerMinute int `json:"rate_limit_per_minute"`
}

// DatabaseConfig holds store related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// RelayMode selects how regular inbound messages reach the destination.
type RelayMode string

const (
	// RelayModeQueue enqueues inbound messages for the batch drainer.
	RelayModeQueue RelayMode = "queue"
	// RelayModeImmediate forwards inbound messages inside the webhook call.
	RelayModeImmediate RelayMode = "immediate"
)

// RelayConfig holds relay engine and drainer configuration
type RelayConfig struct {
	Mode               RelayMode `json:"mode"`
	DrainBatchSize     int       `json:"drain_batch_size"`
	DrainIntervalSec   int       `json:"drain_interval_sec"`
	DrainPauseSec      int       `json:"drain_pause_sec"`
	LedgerTTLHours     int       `json:"ledger_ttl_hours"`
	JanitorIntervalMin int       `json:"janitor_interval_min"`
}

// RetryConfig holds retry related configuration
type RetryConfig struct {
	InitialBackoffMs int `json:"initial_backoff_ms"`
	MaxBackoffMs     int `json:"max_backoff_ms"`
	MaxAttempts      int `json:"max_attempts"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
