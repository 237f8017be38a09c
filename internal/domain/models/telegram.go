package models

// Update mirrors the Telegram Bot API webhook update shape, reduced to the
// message fields this service reacts to.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is one inbound chat message.
type Message struct {
	MessageID int64        `json:"message_id"`
	From      *ChatUser    `json:"from,omitempty"`
	Chat      Chat         `json:"chat"`
	Text      string       `json:"text,omitempty"`
	Photo     []MediaPhoto `json:"photo,omitempty"`
}

// ChatUser identifies the sending Telegram account.
type ChatUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the best human-readable label for the account.
func (u *ChatUser) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

// Chat identifies the conversation an update belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// MediaPhoto is minimal photo metadata; photo decoding is out of scope, the
// bot only tells the operator to type the code instead.
type MediaPhoto struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`
}

// OutboundMessageRequest represents requests to push a message manually via
// the ops API.
type OutboundMessageRequest struct {
	ChatID int64  `json:"chat_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}
