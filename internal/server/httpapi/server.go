// Package httpapi exposes the service over HTTP. It owns the session cookie
// carrier and the RequireSession gate; everything behind the gate works with
// a typed auth.Identity, never with raw tokens.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdeev/todolist/internal/logging"
	"github.com/avdeev/todolist/internal/server/config"
	"github.com/avdeev/todolist/internal/server/services"
)

type Server struct {
	echo   *echo.Echo
	logger logging.Logger
	config *config.Config
	users  *services.UserService
	todos  *services.TodoService
}

func NewServer(cfg *config.Config, logger logging.Logger, users *services.UserService, todos *services.TodoService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		logger: logger.With("component", "httpapi"),
		config: cfg,
		users:  users,
		todos:  todos,
	}

	e.Use(s.requestLogger)
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/", s.handleHome)
	e.POST("/signup", s.handleSignup)
	e.POST("/login", s.handleLogin)
	e.GET("/logout", s.handleLogout)

	// Every todo route passes through the session gate; there is no
	// unguarded handler touching user-owned data.
	g := e.Group("/todos", s.RequireSession)
	g.GET("", s.handleListTodos)
	g.POST("", s.handleCreateTodo)
	g.GET("/:todoId", s.handleGetTodo)
	g.PUT("/:todoId", s.handleUpdateTodo)
	g.DELETE("/:todoId", s.handleDeleteTodo)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.echo.Start(s.config.EndpointAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		return s.echo.Shutdown(context.Background())
	}
}
