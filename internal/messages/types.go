package messages

import "time"

// Message is a chat message with optional file references (content URLs).
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMessageRequest is the send-message input.
type CreateMessageRequest struct {
	Content string   `json:"content"`
	Files   []string `json:"files"`
}

// ListMessagesRequest pages backwards through a chat's history.
type ListMessagesRequest struct {
	LastID int64 `query:"last_id"`
	Limit  int   `query:"limit"`
}
