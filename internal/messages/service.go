// Package messages provides message persistence inside chats.
package messages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loquihq/loqui/internal/files"
)

// Errors returned by message operations.
var (
	ErrEmptyMessage = errors.New("message content is required")
	ErrUnknownFile  = errors.New("message references a file that was not uploaded")
)

// DefaultPageSize bounds message listing when the caller passes no limit.
const DefaultPageSize = 100

// Service persists and lists chat messages.
type Service struct {
	pool   *pgxpool.Pool
	files  *files.Service
	logger *slog.Logger
}

// NewService creates a messages service.
func NewService(log *slog.Logger, pool *pgxpool.Pool, fileService *files.Service) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		files:  fileService,
		logger: log.With(slog.String("service", "messages")),
	}
}

// Create stores a message in the chat. Every referenced file URL must point
// at content already present in the workspace store.
func (s *Service) Create(ctx context.Context, chatID, senderID, wsID int64, req CreateMessageRequest) (Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return Message{}, ErrEmptyMessage
	}
	for _, fileURL := range req.Files {
		shardedPath, ok := workspacePath(fileURL, wsID)
		if !ok {
			return Message{}, fmt.Errorf("%w: %s", ErrUnknownFile, fileURL)
		}
		exists, err := s.files.Exists(ctx, wsID, shardedPath)
		if err != nil {
			return Message{}, fmt.Errorf("check file: %w", err)
		}
		if !exists {
			return Message{}, fmt.Errorf("%w: %s", ErrUnknownFile, fileURL)
		}
	}

	var msg Message
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, content, files)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, sender_id, content, files, created_at
	`, chatID, senderID, req.Content, req.Files).Scan(
		&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content, &msg.Files, &msg.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// List returns up to limit messages in the chat, newest first, strictly
// older than lastID when it is non-zero (keyset pagination).
func (s *Service) List(ctx context.Context, chatID int64, req ListMessagesRequest) ([]Message, error) {
	limit := req.Limit
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	lastID := req.LastID
	if lastID <= 0 {
		lastID = int64(^uint64(0) >> 1)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, sender_id, content, files, created_at
		FROM messages
		WHERE chat_id = $1 AND id < $2
		ORDER BY id DESC
		LIMIT $3
	`, chatID, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content, &msg.Files, &msg.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, msg)
	}
	return items, rows.Err()
}

// workspacePath strips the "/files/{ws}/" prefix and returns the sharded
// path, refusing URLs that point at another workspace.
func workspacePath(fileURL string, wsID int64) (string, bool) {
	prefix := fmt.Sprintf("/files/%d/", wsID)
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(fileURL, prefix)
	if rest == "" {
		return "", false
	}
	return rest, true
}
