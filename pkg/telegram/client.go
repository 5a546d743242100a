package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "tgrelay/internal/errors"
	"tgrelay/pkg/telegram/types"
)

// Client is the outbound Bot API surface the relay uses.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyToMessageID int64) error
	CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64, caption string, replyToMessageID int64) error
}

type BotClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logrus.Logger
}

// NewClient creates a Bot API client. The token never appears in the
// base URL until request time and is never logged.
func NewClient(baseURL, token string, httpClient *http.Client) Client {
	return NewClientWithLogger(baseURL, token, httpClient, nil)
}

func NewClientWithLogger(baseURL, token string, httpClient *http.Client, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &BotClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  httpClient,
		logger:  logger,
	}
}

func (c *BotClient) SendMessage(ctx context.Context, chatID int64, text string, replyToMessageID int64) error {
	return c.call(ctx, "sendMessage", types.SendMessageRequest{
		ChatID:           chatID,
		Text:             text,
		ReplyToMessageID: replyToMessageID,
	})
}

func (c *BotClient) CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64, caption string, replyToMessageID int64) error {
	return c.call(ctx, "copyMessage", types.CopyMessageRequest{
		ChatID:           toChatID,
		FromChatID:       fromChatID,
		MessageID:        messageID,
		Caption:          caption,
		ReplyToMessageID: replyToMessageID,
	})
}

// call posts one Bot API method. Both the HTTP status and the envelope's
// ok flag must agree before a call counts as delivered; the Bot API
// sometimes reports errors with a 200.
func (c *BotClient) call(ctx context.Context, method string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewTelegramError(method, 0, err)
	}
	defer resp.Body.Close()

	var result types.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return apperrors.NewTelegramError(method, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		c.logger.WithFields(logrus.Fields{
			"method":      method,
			"status":      resp.StatusCode,
			"error_code":  result.ErrorCode,
			"description": result.Description,
		}).Warn("Bot API call failed")
		return apperrors.NewTelegramError(method, resp.StatusCode,
			fmt.Errorf("bot API error %d: %s", result.ErrorCode, result.Description))
	}

	return nil
}
