package relay

import "context"

// Standardized structured log field names used across the service.
const (
	LogFieldRequestID  = "request_id"
	LogFieldTraceID    = "trace_id"
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldStatusCode = "status_code"
	LogFieldDuration   = "duration_ms"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldSize       = "response_size"
	LogFieldChatID     = "chat_id"
	LogFieldMessageID  = "message_id"
	LogFieldQueueKey   = "queue_key"
	LogFieldComponent  = "component"
)

type contextKey string

// VerboseContextKey marks a context as allowed to log sensitive fields
// (message text, chat identifiers at debug level).
const VerboseContextKey contextKey = "verbose_logging"

// IsVerboseLogging reports whether verbose logging was requested for this
// context.
func IsVerboseLogging(ctx context.Context) bool {
	verbose, ok := ctx.Value(VerboseContextKey).(bool)
	return ok && verbose
}
