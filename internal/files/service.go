package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/loquihq/loqui/internal/storage"
)

// Service stores uploaded content once per address under a workspace prefix.
type Service struct {
	provider storage.Provider
	logger   *slog.Logger
}

// NewService creates a files service with the given storage provider.
func NewService(log *slog.Logger, provider storage.Provider) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider: provider,
		logger:   log.With(slog.String("service", "files")),
	}
}

// Store computes the content address and persists the bytes unless an object
// with the same address already exists (dedup by digest, not filename).
func (s *Service) Store(ctx context.Context, wsID int64, filename string, data []byte) (ContentAddress, error) {
	address := New(filename, data)
	key := storageKey(wsID, address.Path())

	exists, err := s.provider.Exists(ctx, key)
	if err != nil {
		return ContentAddress{}, fmt.Errorf("check existing object: %w", err)
	}
	if exists {
		return address, nil
	}

	if err := s.provider.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return ContentAddress{}, fmt.Errorf("store content: %w", err)
	}
	s.logger.Info("content stored",
		slog.Int64("ws_id", wsID),
		slog.String("hash", address.Hash),
		slog.Int("size", len(data)),
	)
	return address, nil
}

// Open returns the stored bytes for a sharded path inside a workspace.
func (s *Service) Open(ctx context.Context, wsID int64, shardedPath string) (io.ReadCloser, error) {
	if !validShardedPath(shardedPath) {
		return nil, fmt.Errorf("invalid file path: %q", shardedPath)
	}
	return s.provider.Open(ctx, storageKey(wsID, shardedPath))
}

// Exists reports whether a URL-referenced path is present for the workspace.
func (s *Service) Exists(ctx context.Context, wsID int64, shardedPath string) (bool, error) {
	if !validShardedPath(shardedPath) {
		return false, nil
	}
	return s.provider.Exists(ctx, storageKey(wsID, shardedPath))
}

func storageKey(wsID int64, shardedPath string) string {
	return path.Join(fmt.Sprintf("%d", wsID), shardedPath)
}

// validShardedPath accepts exactly the 3/3/34.ext shape produced by Path.
func validShardedPath(p string) bool {
	parts := strings.Split(p, "/")
	if len(parts) != 3 {
		return false
	}
	if len(parts[0]) != 3 || len(parts[1]) != 3 {
		return false
	}
	rest, ext, found := strings.Cut(parts[2], ".")
	if !found || len(rest) != 34 || ext == "" {
		return false
	}
	for _, part := range []string{parts[0], parts[1], rest} {
		for _, r := range part {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				return false
			}
		}
	}
	return true
}
