package health

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer exposes the standard grpc.health.v1 service, mirroring readiness.
type GRPCServer struct {
	addr    string
	server  *grpc.Server
	health  *grpchealth.Server
	service string
	logger  *logrus.Logger
}

// NewGRPCServer creates a gRPC health server reporting NOT_SERVING until ready.
func NewGRPCServer(addr, service string, logger *logrus.Logger) *GRPCServer {
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &GRPCServer{
		addr:    addr,
		server:  srv,
		health:  hs,
		service: service,
		logger:  logger,
	}
}

// SetServing flips the reported status for the overall server and the named service.
func (g *GRPCServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(g.service, status)
}

// Serve accepts connections on lis until ctx is cancelled.
func (g *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		g.health.Shutdown()
		g.server.GracefulStop()
	}()

	if g.logger != nil {
		g.logger.WithField("addr", lis.Addr().String()).Info("gRPC health server starting")
	}
	if err := g.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc health server: %w", err)
	}
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (g *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.addr, err)
	}
	return g.Serve(ctx, lis)
}
