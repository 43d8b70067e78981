// Package handlers provides the HTTP API handlers for the chat server.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/users"
)

// AuthHandler serves signup and signin and issues tokens.
type AuthHandler struct {
	userService *users.Service
	signer      *auth.Signer
	logger      *slog.Logger
}

// AuthResponse is the success body carrying the signed token.
type AuthResponse struct {
	Token string `json:"token"`
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(log *slog.Logger, userService *users.Service, signer *auth.Signer) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		signer:      signer,
		logger:      log.With(slog.String("handler", "auth")),
	}
}

// Register mounts POST /api/signup and POST /api/signin.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/api/signup", h.Signup)
	e.POST("/api/signin", h.Signin)
}

// Signup creates the user (bootstrapping the workspace when needed) and
// returns a token for the fresh identity.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req users.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.signer.Sign(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "sign token failed")
	}
	return c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Signin verifies credentials and returns a token. Unknown email and wrong
// password get the same response.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req users.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Authenticate(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.signer.Sign(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "sign token failed")
	}
	return c.JSON(http.StatusOK, AuthResponse{Token: token})
}
