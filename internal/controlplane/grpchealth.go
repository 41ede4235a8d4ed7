package controlplane

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/engineconfig"
)

// GRPCServer exposes the standard grpc_health_v1 health service, so an
// orchestrator can Check/Watch the engine process like any other gRPC
// service instead of scraping logs to tell a live run from a hung one.
type GRPCServer struct {
	server     *grpc.Server
	health     *health.Server
	listener   net.Listener
	addr       string
}

// NewGRPCServer builds the health service and binds its listener. The
// service name "" (the default) reports the engine's overall status.
func NewGRPCServer(cfg engineconfig.ControlPlaneConfig) (*GRPCServer, error) {
	listener, err := net.Listen("tcp", cfg.GRPCAddress())
	if err != nil {
		return nil, fmt.Errorf("controlplane: grpc listen on %s: %w", cfg.GRPCAddress(), err)
	}

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &GRPCServer{
		server:   grpcServer,
		health:   healthServer,
		listener: listener,
		addr:     cfg.GRPCAddress(),
	}, nil
}

// Start serves in a background goroutine.
func (s *GRPCServer) Start() {
	go s.server.Serve(s.listener)
}

// SetServing flips the health service's overall status. Plane's Start sets
// it to SERVING once both servers are up, and Plane's Stop sets it back to
// NOT_SERVING before shutting down; run phases do not change it.
func (s *GRPCServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Stop gracefully shuts the gRPC server down.
func (s *GRPCServer) Stop() {
	s.server.GracefulStop()
}
