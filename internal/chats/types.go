package chats

import "time"

// ChatType is derived from construction parameters, never set by a caller.
type ChatType string

// Chat type values, persisted as the chat_type enum.
const (
	TypeSingle         ChatType = "single"
	TypeGroup          ChatType = "group"
	TypePrivateChannel ChatType = "private_channel"
	TypePublicChannel  ChatType = "public_channel"
)

// Chat is a conversation inside a workspace. Members keep insertion order;
// duplicates are collapsed on write.
type Chat struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	Name        string    `json:"name,omitempty"`
	Type        ChatType  `json:"type"`
	Members     []int64   `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateChatRequest is the chat creation input. An empty name means the chat
// is unnamed (single or group).
type CreateChatRequest struct {
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
	Public  bool    `json:"public"`
}

// UpdateChatRequest is a partial update; nil fields keep the current value.
type UpdateChatRequest struct {
	Name    *string `json:"name"`
	Members []int64 `json:"members"`
	Public  *bool   `json:"public"`
}
