// Package gateway wires the API gateway: the auth gate backed by the auth
// service's gRPC validation, the request forwarder, the WebSocket hub and
// the health checker, all served from one HTTP listener.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/hugmood/internal/authrpc"
	"github.com/dmitrijs2005/hugmood/internal/gateway/authgate"
	"github.com/dmitrijs2005/hugmood/internal/gateway/config"
	"github.com/dmitrijs2005/hugmood/internal/gateway/forward"
	"github.com/dmitrijs2005/hugmood/internal/gateway/health"
	"github.com/dmitrijs2005/hugmood/internal/gateway/httpapi"
	"github.com/dmitrijs2005/hugmood/internal/gateway/routing"
	"github.com/dmitrijs2005/hugmood/internal/gateway/ws"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/auth"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	conn    *grpc.ClientConn
	hub     *ws.Hub
	handler http.Handler
}

// NewApp builds the gateway. The gRPC connection to the auth service is
// created lazily by grpc-go, so an unreachable auth service is not an error
// here; requests fall back to local token verification.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel).With("service", "gateway")

	conn, err := grpc.NewClient(c.AuthGRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("auth grpc client: %w", err)
	}

	// Local verification only; the access TTL is irrelevant for Verify.
	tokens := auth.NewTokenService(c.SecretKey, time.Hour, 0)
	gate := authgate.New(authrpc.NewClient(conn), tokens, c.ValidateTimeout, logger)

	client := &http.Client{}
	fwd := forward.New(c.Services, client, c.ForwardTimeout, logger)
	table := routing.Default()
	hub := ws.NewHub(ws.NewRegistry(), gate, fwd, table, logger)

	checker := health.NewChecker(c.Services, []health.GRPCProbe{{
		Name:    "auth_grpc",
		Addr:    c.AuthGRPCAddr,
		Service: authrpc.ServiceName,
		Client:  healthpb.NewHealthClient(conn),
	}}, client, c.HealthTimeout, logger)

	api := httpapi.NewHandler(table, gate, fwd, checker, hub, logger)

	logger.Info(ctx, "gateway configured", "services", len(c.Services), "auth_grpc", c.AuthGRPCAddr)
	return &App{config: c, logger: logger, conn: conn, hub: hub, handler: api.Routes()}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or ctx is cancelled. Open
// WebSocket connections are closed before the HTTP server drains.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting gateway...")
	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.EndpointAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping gateway...")
		app.hub.Shutdown()
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
	<-stopped

	if err := app.conn.Close(); err != nil {
		app.logger.Error(ctx, "close auth grpc connection", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
