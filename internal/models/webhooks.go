package models

// Update is the inbound Bot API webhook envelope. Only the fields the
// relay classifies on are decoded; everything else rides along server-side
// through copyMessage and never touches this process.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message,omitempty"`
}

// IncomingMessage is a Telegram message as delivered by the webhook.
type IncomingMessage struct {
	MessageID      int64            `json:"message_id"`
	From           *User            `json:"from,omitempty"`
	Chat           Chat             `json:"chat"`
	Text           string           `json:"text,omitempty"`
	Caption        string           `json:"caption,omitempty"`
	ReplyToMessage *IncomingMessage `json:"reply_to_message,omitempty"`
}

// Chat identifies a Telegram conversation.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// User identifies a Telegram sender.
type User struct {
	ID    int64 `json:"id"`
	IsBot bool  `json:"is_bot,omitempty"`
}

// QuotedText returns the text or caption of the message, preferring text.
// Replies quote whichever field the original copy carried.
func (m *IncomingMessage) QuotedText() string {
	if m == nil {
		return ""
	}
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
