package types

// SendMessageRequest is the payload for the Bot API sendMessage method.
type SendMessageRequest struct {
	ChatID           int64  `json:"chat_id"`
	Text             string `json:"text"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

// CopyMessageRequest is the payload for the Bot API copyMessage method.
// Caption, when set, replaces the caption of the copy; the Bot API
// treats it as the message text for text messages.
type CopyMessageRequest struct {
	ChatID           int64  `json:"chat_id"`
	FromChatID       int64  `json:"from_chat_id"`
	MessageID        int64  `json:"message_id"`
	Caption          string `json:"caption,omitempty"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

// APIResponse is the Bot API envelope every method call returns.
type APIResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}
