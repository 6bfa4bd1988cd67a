// Package server initializes and runs the backend application: it opens the
// database, runs migrations, builds the services and serves the HTTP API
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/cryptox"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/config"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/httpapi"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/identity"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/oauth"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/repomanager"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/sessions"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/users"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *http.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	key, err := c.EncryptionKey()
	if err != nil {
		return nil, fmt.Errorf("encryption key error: %w", err)
	}
	cipher, err := cryptox.NewFieldCipher(key)
	if err != nil {
		return nil, fmt.Errorf("field cipher error: %w", err)
	}

	userService := users.NewService(rm.Users(db), cipher, c, logger)
	identityService := identity.NewService(rm.Users(db), logger)
	sessionService := sessions.NewService(rm.Sessions(db), c.SessionIdleExpiry, logger)
	provider := oauth.NewGoogleProvider(c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURL)

	api := httpapi.NewServer(provider, identityService, sessionService, userService, logger)

	httpServer := &http.Server{
		Addr:    c.EndpointAddrHTTP,
		Handler: api.Routes(),
	}

	return &App{config: c, logger: logger, db: db, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
