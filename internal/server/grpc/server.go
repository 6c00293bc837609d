// Package grpc serves token validation to other services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/hugmood/internal/authrpc"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Validator is implemented by services.SessionService.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (*services.Validation, error)
}

type GRPCServer struct {
	address   string
	validator Validator
	logger    logging.Logger
	health    *health.Server
}

func NewGRPCServer(address string, l logging.Logger, v Validator) *GRPCServer {
	return &GRPCServer{
		address:   address,
		validator: v,
		logger:    l.With("module", "grpc_server"),
		health:    health.NewServer(),
	}
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestIDInterceptor, s.recoverInterceptor, s.loggingInterceptor))

	authrpc.RegisterAuthServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(authrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
