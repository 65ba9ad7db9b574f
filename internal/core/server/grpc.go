// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/renamer/internal/core/api"
	"github.com/solatis/renamer/internal/core/auth"
	"github.com/solatis/renamer/internal/core/config"
)

// shutdownGrace bounds GracefulStop before connections are cut.
const shutdownGrace = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	config   config.ServerConfig
	log      logrus.FieldLogger
}

// NewGRPCServer creates gRPC server with auth interceptor and service
// registration. A nil authenticator serves without authentication, for
// local development only.
func NewGRPCServer(cfg config.ServerConfig, service api.RenameServer, authenticator *auth.Authenticator, log logrus.FieldLogger) (*GRPCServer, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	interceptors := []grpc.UnaryServerInterceptor{timeoutInterceptor(cfg.RequestTimeout)}
	if authenticator != nil {
		interceptors = append(interceptors, authenticator.UnaryInterceptor())
	} else {
		log.Warn("authentication disabled")
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	api.RegisterRenameServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		log:    log.WithField("component", "server"),
	}, nil
}

// timeoutInterceptor bounds every request by the configured timeout.
func timeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := s.config.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *GRPCServer) Serve(listener net.Listener) error {
	s.listener = listener
	s.log.WithField("addr", listener.Addr().String()).Info("serving")
	return s.server.Serve(listener)
}

// Shutdown marks the server not serving and stops it gracefully, forcing
// a stop when ctx ends or the grace period passes.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownGrace):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
