package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/loquihq/loqui/internal/identity"
)

// contextKey is the echo context key the verified identity is stored under.
const contextKey = "user"

// Middleware returns the identity gate: it extracts the bearer token, runs it
// through the verifier, and attaches the resulting identity to the request
// context. Requests matched by skipper pass through unauthenticated. Any
// verification failure terminates the request with an undifferentiated 401.
func Middleware(verifier *Verifier, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper:    skipper,
		ContextKey: contextKey,
		ParseTokenFunc: func(c echo.Context, token string) (any, error) {
			user, err := verifier.Verify(token)
			if err != nil {
				return nil, err
			}
			return user, nil
		},
		// Missing header, malformed token, bad signature: all the same 401.
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		},
	})
}

// UserFromContext returns the identity the gate attached to the request.
func UserFromContext(c echo.Context) (identity.User, error) {
	user, ok := c.Get(contextKey).(identity.User)
	if !ok {
		return identity.User{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}
