package constants

// Relay defaults
const (
	DefaultDrainBatchSize     = 20
	DefaultDrainIntervalSec   = 60
	DefaultDrainPauseSec      = 3
	DefaultLedgerTTLHours     = 24
	DefaultJanitorIntervalMin = 60
)

// Store key prefixes. Keys under QueueKeyPrefix sort lexicographically in
// arrival order because the timestamp component is a fixed-width RFC 3339
// string with all nine fraction digits.
const (
	DestinationKey  = "DESTINATION_CHAT_ID"
	QueueKeyPrefix  = "message_"
	LedgerKeyPrefix = "processed_"
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec         = 30
	DefaultDatabaseRetryAttempts  = 3
	DefaultGracefulShutdownSec    = 30
	DefaultBackoffInitialMs       = 500
	DefaultBackoffMaxMs           = 60000
	DefaultBackoffMaxAttempts     = 5
	DefaultServerPort             = 8084
	DefaultServerReadTimeoutSec   = 15
	DefaultServerWriteTimeoutSec  = 15
	DefaultServerIdleTimeoutSec   = 60
	DefaultWebhookRateLimitPerMin = 120
)

// Encryption parameters for optional at-rest value encryption.
const (
	EncryptionSalt       = "tgrelay-store-salt-v1"
	EncryptionIterations = 100000
	EncryptionKeySize    = 32
	EncryptionNonceSize  = 12
)

// ServerErrorChannelSize bounds the buffered server error channel in main.
const ServerErrorChannelSize = 1
