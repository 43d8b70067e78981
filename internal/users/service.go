// Package users provides user accounts, credentials, and workspace bootstrap.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/db"
	"github.com/loquihq/loqui/internal/identity"
)

// Errors returned by user operations.
var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages users and their workspace membership.
type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a users service.
func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "users")),
	}
}

// Create signs up a new user. The named workspace is created when it does not
// exist yet, with the new user as owner. A duplicate email surfaces as
// ErrEmailTaken; the uniqueness race between two concurrent signups is
// settled by the database constraint, not here.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (identity.User, error) {
	req.Fullname = strings.TrimSpace(req.Fullname)
	req.Email = strings.TrimSpace(req.Email)
	req.Workspace = strings.TrimSpace(req.Workspace)
	if req.Fullname == "" || req.Email == "" || req.Password == "" || req.Workspace == "" {
		return identity.User{}, fmt.Errorf("fullname, email, password, and workspace are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return identity.User{}, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return identity.User{}, err
	}
	defer tx.Rollback(ctx)

	wsID, err := ensureWorkspace(ctx, tx, req.Workspace)
	if err != nil {
		return identity.User{}, err
	}

	var user identity.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (ws_id, fullname, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ws_id, fullname, email, created_at
	`, wsID, req.Fullname, req.Email, hash).Scan(
		&user.ID, &user.WorkspaceID, &user.Fullname, &user.Email, &user.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return identity.User{}, fmt.Errorf("%w: %s", ErrEmailTaken, req.Email)
		}
		return identity.User{}, err
	}

	// A fresh workspace is owned by its first user.
	if _, err := tx.Exec(ctx, `
		UPDATE workspaces SET owner_id = $1 WHERE id = $2 AND owner_id = 0
	`, user.ID, wsID); err != nil {
		return identity.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return identity.User{}, err
	}

	s.logger.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.Int64("ws_id", user.WorkspaceID),
	)
	return user, nil
}

// Authenticate checks email and password and returns the identity on success.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, req SigninRequest) (identity.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return identity.User{}, ErrInvalidCredentials
	}

	var user identity.User
	var hash string
	err := s.pool.QueryRow(ctx, `
		SELECT id, ws_id, fullname, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, req.Email).Scan(&user.ID, &user.WorkspaceID, &user.Fullname, &user.Email, &hash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.User{}, ErrInvalidCredentials
		}
		return identity.User{}, err
	}
	if !auth.VerifyPassword(req.Password, hash) {
		return identity.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByEmail looks a user up inside a workspace. Returns pgx.ErrNoRows
// wrapped when absent.
func (s *Service) FindByEmail(ctx context.Context, wsID int64, email string) (identity.User, error) {
	var user identity.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, ws_id, fullname, email, created_at
		FROM users
		WHERE ws_id = $1 AND email = $2
	`, wsID, email).Scan(&user.ID, &user.WorkspaceID, &user.Fullname, &user.Email, &user.CreatedAt)
	if err != nil {
		return identity.User{}, err
	}
	return user, nil
}

// ResolveByIDs returns the users from ids that exist in the workspace.
// Callers compare the result count against the request count to detect
// phantom members.
func (s *Service) ResolveByIDs(ctx context.Context, wsID int64, ids []int64) ([]identity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, ws_id, fullname, email, created_at
		FROM users
		WHERE ws_id = $1 AND id = ANY($2)
	`, wsID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []identity.User
	for rows.Next() {
		var user identity.User
		if err := rows.Scan(&user.ID, &user.WorkspaceID, &user.Fullname, &user.Email, &user.CreatedAt); err != nil {
			return nil, err
		}
		found = append(found, user)
	}
	return found, rows.Err()
}

// ListByWorkspace returns all users in the workspace, oldest first.
func (s *Service) ListByWorkspace(ctx context.Context, wsID int64) ([]identity.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ws_id, fullname, email, created_at
		FROM users
		WHERE ws_id = $1
		ORDER BY id
	`, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]identity.User, 0)
	for rows.Next() {
		var user identity.User
		if err := rows.Scan(&user.ID, &user.WorkspaceID, &user.Fullname, &user.Email, &user.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, user)
	}
	return items, rows.Err()
}

func ensureWorkspace(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM workspaces WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name, owner_id) VALUES ($1, 0)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
