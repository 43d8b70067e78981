package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/users"
)

// UserHandler serves workspace user listing.
type UserHandler struct {
	userService *users.Service
	logger      *slog.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(log *slog.Logger, userService *users.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      log.With(slog.String("handler", "users")),
	}
}

// Register mounts GET /api/users.
func (h *UserHandler) Register(e *echo.Echo) {
	e.GET("/api/users", h.List)
}

// List returns all users in the caller's workspace.
func (h *UserHandler) List(c echo.Context) error {
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.userService.ListByWorkspace(c.Request().Context(), user.WorkspaceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
