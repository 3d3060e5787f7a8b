// Package server wires the application together: configuration, logging,
// database and migrations, services, and the HTTP server with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avdeev/todolist/internal/logging"
	"github.com/avdeev/todolist/internal/server/auth"
	"github.com/avdeev/todolist/internal/server/config"
	"github.com/avdeev/todolist/internal/server/httpapi"
	"github.com/avdeev/todolist/internal/server/repositories/repomanager"
	"github.com/avdeev/todolist/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager
	server *httpapi.Server
}

// NewApp validates the config and builds the full dependency graph. A
// misconfigured server (no secret key, bad durations) refuses to construct.
func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	hasher := auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers)

	userService := services.NewUserService(db, m, hasher, cfg)
	todoService := services.NewTodoService(db, m, cfg)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		repos:  m,
		server: httpapi.NewServer(cfg, logger, userService, todoService),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run migrates the schema and serves HTTP until the context is cancelled or
// an OS signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	err := app.server.Run(ctx)

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "closing db", "error", cerr)
	}

	return err
}
