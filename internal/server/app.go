// Package server wires the auth service: storage, session logic and the
// REST, GraphQL and gRPC transports. It handles graceful shutdown on
// SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/auth"
	"github.com/dmitrijs2005/hugmood/internal/server/config"
	"github.com/dmitrijs2005/hugmood/internal/server/credentials"
	"github.com/dmitrijs2005/hugmood/internal/server/graphql"
	"github.com/dmitrijs2005/hugmood/internal/server/httpapi"
	"github.com/dmitrijs2005/hugmood/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hugmood/internal/server/services"

	gs "github.com/dmitrijs2005/hugmood/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	store    *credentials.Store
	sessions *services.SessionService
}

// NewApp opens storage and builds the services. An empty DSN selects the
// in-memory store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel).With("service", "auth")

	var repos repomanager.RepositoryManager
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory store")
		repos = repomanager.NewMemoryRepositoryManager()
	} else {
		pg, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repos = pg
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store := credentials.NewStore(repos, c.BcryptCost)
	tokens := auth.NewTokenService(c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenMultiplier)
	sessions := services.NewSessionService(store, tokens, logger)

	return &App{config: c, logger: logger, repos: repos, store: store, sessions: sessions}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpHandler() http.Handler {
	api := httpapi.NewHandler(app.sessions, app.store, app.logger)
	mux := http.NewServeMux()
	api.Routes(mux)
	mux.Handle("POST /graphql", graphql.NewHandler(graphql.NewSchema(app.sessions, app.logger)))
	return api.NewServerHandler(mux)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.httpHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// closes storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if app.config.SeedTestUser {
		if err := app.sessions.SeedTestUser(ctx); err != nil {
			app.logger.Error(ctx, "seed test user", "error", err)
		}
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "close storage", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
