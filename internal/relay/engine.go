package relay

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"tgrelay/internal/constants"
	"tgrelay/internal/metrics"
	"tgrelay/internal/models"
	"tgrelay/internal/tracing"
	"tgrelay/internal/validation"
)

// TelegramClient is the outbound surface the engine relays through.
type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyToMessageID int64) error
	CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64, caption string, replyToMessageID int64) error
}

const (
	welcomeText      = "Welcome! You can send me any message, and I will forward it to the support team. They will reply to you through this chat."
	setUsageText     = "Usage: /set <chat_id>"
	replyFailureText = "Failed to send reply. Please try again later."
	forwardApology   = "Sorry, your message could not be forwarded. Please try again later."
)

// Engine classifies every inbound update and carries out the resulting
// relay action. It holds no per-update state; the destination binding is
// read from the store on each operation so a /set takes effect without a
// restart.
type Engine struct {
	store       Store
	queue       *Queue
	ledger      *Ledger
	client      TelegramClient
	logger      *logrus.Logger
	adminChatID int64
	mode        models.RelayMode
}

func NewEngine(store Store, queue *Queue, ledger *Ledger, client TelegramClient, adminChatID int64, mode models.RelayMode, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		store:       store,
		queue:       queue,
		ledger:      ledger,
		client:      client,
		logger:      logger,
		adminChatID: adminChatID,
		mode:        mode,
	}
}

// Destination returns the currently bound destination chat, or (0,
// false, nil) when none has been set yet.
func (e *Engine) Destination(ctx context.Context) (int64, bool, error) {
	raw, found, err := e.store.Get(ctx, constants.DestinationKey)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		e.logger.WithField(LogFieldComponent, "engine").
			Warnf("Stored destination %q is not a chat ID, treating as unset", raw)
		return 0, false, nil
	}
	return id, true, nil
}

// HandleUpdate classifies one inbound update and performs the resulting
// action. It always returns nil for conditions the sender cannot fix
// (unknown commands, untagged destination chatter); errors surface only
// when the relay itself failed in a way worth retrying or alerting on.
func (e *Engine) HandleUpdate(ctx context.Context, update *models.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	msg := update.Message
	metrics.IncrementCounter("relay_updates_total", nil, "Total inbound updates received")

	// Commands outrank every other classification. The destination check
	// must come after them: if it came first, binding the destination to
	// the admin's own chat would swallow every later /set and make the
	// binding permanent.
	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start":
		return e.client.SendMessage(ctx, msg.Chat.ID, welcomeText, 0)
	case strings.HasPrefix(text, "/set"):
		return e.handleSetCommand(ctx, msg, text)
	}

	destID, destSet, err := e.Destination(ctx)
	if err != nil {
		return err
	}

	if destSet && msg.Chat.ID == destID {
		return e.handleDestinationMessage(ctx, msg, destID)
	}

	return e.relayInbound(ctx, msg, destID, destSet)
}

// handleSetCommand rebinds the destination chat. Only the admin chat may
// do this; anyone else gets silence so the command's existence is not
// advertised.
func (e *Engine) handleSetCommand(ctx context.Context, msg *models.IncomingMessage, text string) error {
	if msg.Chat.ID != e.adminChatID {
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldChatID:    msg.Chat.ID,
		}).Debug("Ignoring /set from non-admin chat")
		return nil
	}

	fields := strings.Fields(text)
	if len(fields) != 2 || fields[0] != "/set" {
		return e.client.SendMessage(ctx, msg.Chat.ID, setUsageText, 0)
	}
	chatID, err := validation.ValidateChatID(fields[1])
	if err != nil {
		return e.client.SendMessage(ctx, msg.Chat.ID, setUsageText, 0)
	}

	if err := e.store.Put(ctx, constants.DestinationKey, strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	metrics.IncrementCounter("relay_destination_set_total", nil, "Total destination rebinds")
	e.logger.WithFields(logrus.Fields{
		LogFieldComponent: "engine",
		LogFieldChatID:    chatID,
	}).Info("Destination chat rebound")
	return e.client.SendMessage(ctx, msg.Chat.ID, "Destination chat ID set to "+strconv.FormatInt(chatID, 10), 0)
}

// handleDestinationMessage routes replies from the destination chat back
// to the original sender. Only replies quoting a tagged relay copy are
// routable; everything else in the destination chat is team conversation
// and is dropped.
func (e *Engine) handleDestinationMessage(ctx context.Context, msg *models.IncomingMessage, destID int64) error {
	if msg.ReplyToMessage == nil {
		return nil
	}

	tag, err := DecodeTag(msg.ReplyToMessage.QuotedText())
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldMessageID: msg.MessageID,
		}).WithError(err).Warn("Quoted message carries a malformed tag")
		return e.client.SendMessage(ctx, destID, replyFailureText, msg.MessageID)
	}
	if tag == nil {
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldMessageID: msg.MessageID,
		}).Debug("Reply quotes an untagged message, dropping")
		return nil
	}

	err = e.client.CopyMessage(ctx, tag.ChatID, destID, msg.MessageID, "", tag.MessageID)
	if err != nil {
		metrics.IncrementCounter("relay_reply_failures_total", nil, "Total reply routing failures")
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldChatID:    tag.ChatID,
			LogFieldMessageID: msg.MessageID,
		}).WithError(err).Error("Failed to route reply to origin chat")
		return e.client.SendMessage(ctx, destID, replyFailureText, msg.MessageID)
	}
	metrics.IncrementCounter("relay_replies_total", nil, "Total replies routed back to origin")
	return nil
}

// relayInbound handles an ordinary user message: queue it for the next
// drain cycle, or forward it right away in immediate mode.
func (e *Engine) relayInbound(ctx context.Context, msg *models.IncomingMessage, destID int64, destSet bool) error {
	queued := models.QueuedMessage{
		FromChatID: msg.Chat.ID,
		MessageID:  msg.MessageID,
		IsText:     msg.Text != "",
	}

	if e.mode == models.RelayModeImmediate {
		if !destSet {
			e.logger.WithField(LogFieldComponent, "engine").
				Warn("No destination chat bound, dropping inbound message")
			return nil
		}
		return e.ForwardQueued(ctx, "", queued, destID)
	}

	key, err := e.queue.Enqueue(ctx, queued)
	if err != nil {
		e.sendApology(ctx, msg.Chat.ID, msg.MessageID)
		return err
	}
	metrics.IncrementCounter("relay_enqueued_total", nil, "Total messages enqueued")
	e.logger.WithFields(logrus.Fields{
		LogFieldComponent: "engine",
		LogFieldChatID:    msg.Chat.ID,
		LogFieldMessageID: msg.MessageID,
		LogFieldQueueKey:  key,
	}).Debug("Inbound message enqueued")
	return nil
}

// ForwardQueued carries out one forward: dedup check, tagged copy to the
// destination, ledger mark on success. The queue entry (when key is
// non-empty) is removed whether or not the copy succeeded, so one bad
// message can never block those behind it. The sender gets an apology on
// failure.
func (e *Engine) ForwardQueued(ctx context.Context, key string, msg models.QueuedMessage, destID int64) error {
	ctx, span := tracing.WithOtelTracing(ctx, "forward_message")
	defer span.End()
	tracing.AddSpanAttributes(ctx,
		attribute.Int64("relay.origin_chat_id", msg.FromChatID),
		attribute.Int64("relay.origin_message_id", msg.MessageID),
		attribute.Bool("relay.is_text", msg.IsText),
	)

	already, err := e.ledger.IsForwarded(ctx, msg.FromChatID, msg.MessageID)
	if err != nil {
		return err
	}
	if already {
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldChatID:    msg.FromChatID,
			LogFieldMessageID: msg.MessageID,
		}).Debug("Message already forwarded, skipping")
		return e.removeQueued(ctx, key)
	}

	// Only text messages carry the provenance tag: a caption on a text
	// copy is the text itself, while media captions are user content and
	// must not be overwritten.
	caption := ""
	if msg.IsText {
		caption = EncodeTag(msg.FromChatID, msg.MessageID)
	}

	start := time.Now()
	err = e.client.CopyMessage(ctx, destID, msg.FromChatID, msg.MessageID, caption, 0)
	metrics.RecordTimer("relay_forward_duration", time.Since(start), nil, "Forward call duration")

	if err != nil {
		metrics.IncrementCounter("relay_forward_failures_total", nil, "Total failed forwards")
		tracing.RecordError(ctx, err)
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldChatID:    msg.FromChatID,
			LogFieldMessageID: msg.MessageID,
		}).WithError(err).Error("Failed to forward message")
		e.sendApology(ctx, msg.FromChatID, msg.MessageID)
		return e.removeQueued(ctx, key)
	}

	metrics.IncrementCounter("relay_forwarded_total", nil, "Total messages forwarded")
	if err := e.ledger.MarkForwarded(ctx, msg.FromChatID, msg.MessageID); err != nil {
		e.logger.WithFields(logrus.Fields{
			LogFieldComponent: "engine",
			LogFieldChatID:    msg.FromChatID,
			LogFieldMessageID: msg.MessageID,
		}).WithError(err).Warn("Forwarded but failed to record ledger entry")
	}
	return e.removeQueued(ctx, key)
}

func (e *Engine) removeQueued(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return e.queue.Remove(ctx, key)
}

// sendApology tells the sender their message did not make it through,
// addressed as a reply to the failed message so they can tell which one.
// Fire and forget: the apology must never delay or fail the drain cycle
// that triggered it.
func (e *Engine) sendApology(ctx context.Context, chatID, replyToMessageID int64) {
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := e.client.SendMessage(sendCtx, chatID, forwardApology, replyToMessageID); err != nil {
			e.logger.WithFields(logrus.Fields{
				LogFieldComponent: "engine",
				LogFieldChatID:    chatID,
			}).WithError(err).Warn("Failed to deliver apology")
		}
	}()
}
