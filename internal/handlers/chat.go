package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/chats"
	"github.com/loquihq/loqui/internal/logger"
	"github.com/loquihq/loqui/internal/messages"
)

// chatIDKey is the context key the membership gate stores the parsed chat id
// under, so gated handlers do not re-parse the path.
const chatIDKey = "chat_id"

// MembershipChecker is the resource gate's view of the chats service.
type MembershipChecker interface {
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
}

// ChatHandler serves chat CRUD and chat messages. Every /:id route runs the
// membership gate before the handler, reads included.
type ChatHandler struct {
	chatService    *chats.Service
	messageService *messages.Service
	membership     MembershipChecker
	logger         *slog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(log *slog.Logger, chatService *chats.Service, messageService *messages.Service) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		messageService: messageService,
		membership:     chatService,
		logger:         log.With(slog.String("handler", "chat")),
	}
}

// Register mounts the chat routes. /:id routes are wrapped by RequireMembership.
func (h *ChatHandler) Register(e *echo.Echo) {
	group := e.Group("/api/chats")
	group.GET("", h.List)
	group.POST("", h.Create)

	gated := group.Group("/:id", h.RequireMembership)
	gated.GET("", h.Get)
	gated.PATCH("", h.Update)
	gated.DELETE("", h.Delete)
	gated.POST("/messages", h.SendMessage)
	gated.GET("/messages", h.ListMessages)
}

// RequireMembership terminates the request with 403 unless the authenticated
// caller is in the chat's member set. It runs after the identity gate and
// before the wrapped handler, for reads and writes alike.
func (h *ChatHandler) RequireMembership(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := auth.UserFromContext(c)
		if err != nil {
			return err
		}
		chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
		}

		member, err := h.membership.IsMember(c.Request().Context(), chatID, user.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !member {
			logger.FromContext(c.Request().Context()).Info("membership denied",
				slog.Int64("chat_id", chatID),
				slog.Int64("user_id", user.ID),
			)
			return echo.NewHTTPError(http.StatusForbidden, "you are not a member of this chat")
		}

		c.Set(chatIDKey, chatID)
		return next(c)
	}
}

// List returns the chats of the caller's workspace.
func (h *ChatHandler) List(c echo.Context) error {
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.chatService.List(c.Request().Context(), user.WorkspaceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Create validates, classifies, and persists a new chat in the caller's
// workspace.
func (h *ChatHandler) Create(c echo.Context) error {
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	var req chats.CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	chat, err := h.chatService.Create(c.Request().Context(), user.WorkspaceID, req)
	if err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusCreated, chat)
}

// Get returns one chat. Membership was already checked by the gate.
func (h *ChatHandler) Get(c echo.Context) error {
	chat, err := h.chatService.Get(c.Request().Context(), c.Get(chatIDKey).(int64))
	if err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusOK, chat)
}

// Update applies a partial update and re-derives the chat type.
func (h *ChatHandler) Update(c echo.Context) error {
	var req chats.UpdateChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	chat, err := h.chatService.Update(c.Request().Context(), c.Get(chatIDKey).(int64), req)
	if err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusOK, chat)
}

// Delete removes the chat.
func (h *ChatHandler) Delete(c echo.Context) error {
	if err := h.chatService.Delete(c.Request().Context(), c.Get(chatIDKey).(int64)); err != nil {
		return chatError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SendMessage stores a message from the caller in the chat.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	user, err := auth.UserFromContext(c)
	if err != nil {
		return err
	}
	var req messages.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.messageService.Create(c.Request().Context(), c.Get(chatIDKey).(int64), user.ID, user.WorkspaceID, req)
	if err != nil {
		if errors.Is(err, messages.ErrEmptyMessage) || errors.Is(err, messages.ErrUnknownFile) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, msg)
}

// ListMessages pages backwards through the chat history.
func (h *ChatHandler) ListMessages(c echo.Context) error {
	var req messages.ListMessagesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.messageService.List(c.Request().Context(), c.Get(chatIDKey).(int64), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// chatError maps domain errors to transport errors; the reason is safe to
// surface because these are caller-correctable input errors.
func chatError(err error) error {
	switch {
	case errors.Is(err, chats.ErrChatNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, chats.ErrInsufficientMembers),
		errors.Is(err, chats.ErrUnnamedLargeGroup),
		errors.Is(err, chats.ErrUnknownMembers):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
