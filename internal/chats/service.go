// Package chats provides chat lifecycle rules and membership checks.
package chats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loquihq/loqui/internal/db"
	"github.com/loquihq/loqui/internal/identity"
)

// Errors returned by chat operations. These are caller-correctable input
// errors and surface with their reason, unlike auth failures.
var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrInsufficientMembers = errors.New("a chat needs at least two members")
	ErrUnnamedLargeGroup   = errors.New("a chat with more than eight members must be named")
	ErrUnknownMembers      = errors.New("some members do not exist")
)

// MemberResolver reports which of the requested ids exist in a workspace.
// Satisfied by users.Service.
type MemberResolver interface {
	ResolveByIDs(ctx context.Context, wsID int64, ids []int64) ([]identity.User, error)
}

// Service manages chats for a workspace.
type Service struct {
	pool     *pgxpool.Pool
	resolver MemberResolver
	logger   *slog.Logger
}

// NewService creates a chats service.
func NewService(log *slog.Logger, pool *pgxpool.Pool, resolver MemberResolver) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:     pool,
		resolver: resolver,
		logger:   log.With(slog.String("service", "chats")),
	}
}

// Create validates and classifies a new chat, then persists it. The whole
// operation fails without a write when any rule is violated.
func (s *Service) Create(ctx context.Context, wsID int64, req CreateChatRequest) (Chat, error) {
	chatType, members, err := planChat(req.Name, req.Members, req.Public)
	if err != nil {
		return Chat{}, err
	}
	if err := s.checkMembersExist(ctx, wsID, members); err != nil {
		return Chat{}, err
	}

	chat, err := scanChat(s.pool.QueryRow(ctx, `
		INSERT INTO chats (ws_id, name, type, members)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ws_id, name, type, members, created_at
	`, wsID, db.TextFromString(req.Name), chatType, members))
	if err != nil {
		return Chat{}, err
	}

	s.logger.Info("chat created",
		slog.Int64("chat_id", chat.ID),
		slog.String("type", string(chat.Type)),
		slog.Int("members", len(chat.Members)),
	)
	return chat, nil
}

// List returns all chats in the workspace.
func (s *Service) List(ctx context.Context, wsID int64) ([]Chat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ws_id, name, type, members, created_at
		FROM chats
		WHERE ws_id = $1
		ORDER BY id
	`, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, chat)
	}
	return items, rows.Err()
}

// Get returns the chat or ErrChatNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Chat, error) {
	chat, err := scanChat(s.pool.QueryRow(ctx, `
		SELECT id, ws_id, name, type, members, created_at
		FROM chats
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Chat{}, fmt.Errorf("%w: %d", ErrChatNotFound, id)
		}
		return Chat{}, err
	}
	return chat, nil
}

// Update applies a partial update. Replaced member sets are re-checked for
// existence, and the type is re-derived from the merged name/member/public
// state with the same rules as creation.
func (s *Service) Update(ctx context.Context, id int64, req UpdateChatRequest) (Chat, error) {
	chat, err := s.Get(ctx, id)
	if err != nil {
		return Chat{}, err
	}

	name := chat.Name
	if req.Name != nil {
		name = *req.Name
	}
	members := chat.Members
	membersReplaced := req.Members != nil
	if membersReplaced {
		members = req.Members
	}
	public := chat.Type == TypePublicChannel
	if req.Public != nil {
		public = *req.Public
	}

	chatType, normalized, err := planChat(name, members, public)
	if err != nil {
		return Chat{}, err
	}
	if membersReplaced {
		if err := s.checkMembersExist(ctx, chat.WorkspaceID, normalized); err != nil {
			return Chat{}, err
		}
	}

	updated, err := scanChat(s.pool.QueryRow(ctx, `
		UPDATE chats
		SET name = $1, type = $2, members = $3
		WHERE id = $4
		RETURNING id, ws_id, name, type, members, created_at
	`, db.TextFromString(name), chatType, normalized, id))
	if err != nil {
		return Chat{}, err
	}
	return updated, nil
}

// Delete removes the chat. Deleting an unknown id is ErrChatNotFound, not a
// silent no-op.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrChatNotFound, id)
	}
	s.logger.Info("chat deleted", slog.Int64("chat_id", id))
	return nil
}

// IsMember reports whether userID is in the chat's member set. An unknown
// chat is simply "not a member".
func (s *Service) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `
		SELECT 1 FROM chats WHERE id = $1 AND $2 = ANY(members)
	`, chatID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// scanChat reads one chat row. The name column is nullable: NULL marks an
// unnamed chat and maps to the empty string.
func scanChat(row pgx.Row) (Chat, error) {
	var chat Chat
	var name pgtype.Text
	err := row.Scan(&chat.ID, &chat.WorkspaceID, &name, &chat.Type, &chat.Members, &chat.CreatedAt)
	if err != nil {
		return Chat{}, err
	}
	chat.Name = db.TextToString(name)
	return chat, nil
}

// checkMembersExist rejects the operation when any requested member id does
// not resolve to a workspace user. Partial membership is never allowed.
func (s *Service) checkMembersExist(ctx context.Context, wsID int64, members []int64) error {
	found, err := s.resolver.ResolveByIDs(ctx, wsID, members)
	if err != nil {
		return fmt.Errorf("resolve members: %w", err)
	}
	if len(found) != len(members) {
		return ErrUnknownMembers
	}
	return nil
}
