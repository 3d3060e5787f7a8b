package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdeev/todolist/internal/server/auth"
)

// identityContextKey is the echo context key under which RequireSession
// stores the verified identity. Handlers read it with identityFrom only.
const identityContextKey = "auth.identity"

// identityFrom returns the identity RequireSession placed on the context.
// The second result is false for requests that never passed the gate.
func identityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityContextKey).(auth.Identity)
	return id, ok
}

// RequireSession rejects any request without a valid session cookie. On
// success it attaches the token's identity to the request context; on a
// present-but-invalid cookie it also clears the cookie so the client does
// not keep resending a dead session.
func (s *Server) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(s.config.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return s.unauthenticated(c)
		}

		identity, err := auth.ParseToken(cookie.Value, []byte(s.config.SecretKey))
		if err != nil {
			s.logger.Debug(c.Request().Context(), "rejected session token", "reason", err)
			s.clearSessionCookie(c)
			return s.unauthenticated(c)
		}

		c.Set(identityContextKey, identity)
		return next(c)
	}
}

func (s *Server) unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
}

func (s *Server) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.SessionTokenValidityDuration / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		s.logger.Info(req.Context(), "request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start).String(),
		)
		return err
	}
}
