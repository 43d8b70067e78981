package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/files"
)

// maxUploadBytes bounds a single multipart upload.
const maxUploadBytes = 32 << 20

// FileHandler serves content-addressed upload and download.
type FileHandler struct {
	fileService *files.Service
	logger      *slog.Logger
}

// UploadedFile describes one stored upload.
type UploadedFile struct {
	Hash string `json:"hash"`
	Ext  string `json:"ext"`
	URL  string `json:"url"`
}

// NewFileHandler creates a file handler.
func NewFileHandler(log *slog.Logger, fileService *files.Service) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      log.With(slog.String("handler", "files")),
	}
}

// Register mounts POST /api/upload and GET /files/:ws_id/*. The download path
// matches the URLs handed out on upload.
func (h *FileHandler) Register(e *echo.Echo) {
	e.POST("/api/upload", h.Upload)
	e.GET("/files/:ws_id/*", h.Download)
}

// Upload stores every part of a multipart form under its content address in
// the caller's workspace and returns the derived addresses and URLs.
// Identical bytes land on the same address however they are named.
func (h *FileHandler) Upload(c echo.Context) error {
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files in upload")
	}

	uploaded := make([]UploadedFile, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxUploadBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}
		src, err := header.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "open upload part failed")
		}
		data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
		src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "read upload failed")
		}
		if int64(len(data)) > maxUploadBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
		}

		address, err := h.fileService.Store(c.Request().Context(), user.WorkspaceID, header.Filename, data)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		uploaded = append(uploaded, UploadedFile{
			Hash: address.Hash,
			Ext:  address.Ext,
			URL:  address.URL(user.WorkspaceID),
		})
	}
	return c.JSON(http.StatusOK, uploaded)
}

// Download streams stored content back. The path's workspace must be the
// caller's own workspace.
func (h *FileHandler) Download(c echo.Context) error {
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	wsID, err := strconv.ParseInt(c.Param("ws_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid workspace id")
	}
	if wsID != user.WorkspaceID {
		return echo.NewHTTPError(http.StatusForbidden, "file belongs to another workspace")
	}

	shardedPath := c.Param("*")
	rc, err := h.fileService.Open(c.Request().Context(), wsID, shardedPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	defer rc.Close()

	contentType := mime.TypeByExtension("." + extFromPath(shardedPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, contentType, rc)
}

func extFromPath(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		switch p[i] {
		case '.':
			return p[i+1:]
		case '/':
			return ""
		}
	}
	return ""
}
