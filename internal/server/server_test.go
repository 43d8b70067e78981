package server

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/loquihq/loqui/internal/auth"
	"github.com/loquihq/loqui/internal/identity"
	"github.com/loquihq/loqui/internal/logger"
)

type stubHandler struct{}

func (stubHandler) Register(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/api/me", func(c echo.Context) error {
		user, err := auth.UserFromContext(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, user)
	})
	e.GET("/api/logcheck", func(c echo.Context) error {
		if logger.FromContext(c.Request().Context()) == logger.L {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.NoContent(http.StatusOK)
	})
}

func newTestServer(t *testing.T) (*Server, *auth.Signer) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(logger.L, ":0", auth.NewVerifier(pub), stubHandler{})
	return srv, auth.NewSigner(priv)
}

func TestOpenRoutesSkipTheGate(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/ping status = %d, want 200", rec.Code)
	}
}

func TestAPIRoutesRequireToken(t *testing.T) {
	srv, signer := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated /api/me status = %d, want 401", rec.Code)
	}

	token, err := signer.Sign(identity.User{ID: 1, WorkspaceID: 2, Fullname: "Hal", Email: "hal@acme.test"})
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated /api/me status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
}

func TestGateFailuresAreUniform401(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-even-a-token")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestRequestScopedLoggerIsAttached(t *testing.T) {
	srv, signer := newTestServer(t)

	token, err := signer.Sign(identity.User{ID: 1, WorkspaceID: 2})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/logcheck", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("handler saw no request-scoped logger: status = %d", rec.Code)
	}
}
