package controlplane

import (
	"context"
	"fmt"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/engineconfig"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/obslog"
)

// Metrics is the process-wide Prometheus registry for run/kernel/shm
// instrumentation. It is created unconditionally at process start so the
// engine's main loop can record observations whether or not the HTTP
// control plane is enabled to serve them; Start only decides whether
// anything is listening on /metrics.
var Metrics = obslog.NewMetrics()

// Plane bundles the HTTP and gRPC halves of the control plane and their
// shared status tracker.
type Plane struct {
	HTTP    *HTTPServer
	GRPC    *GRPCServer
	Tracker *StatusTracker
}

// Start builds and starts both servers if cfg.Enabled; returns nil if the
// control plane is disabled.
func Start(cfg engineconfig.ControlPlaneConfig) (*Plane, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	tracker := NewStatusTracker()

	grpcServer, err := NewGRPCServer(cfg)
	if err != nil {
		return nil, fmt.Errorf("controlplane: %w", err)
	}

	httpServer := NewHTTPServer(cfg, tracker)

	httpServer.Start()
	grpcServer.Start()
	grpcServer.SetServing(true)

	obslog.Infof("control plane listening: http=%s grpc=%s", cfg.HTTPAddress(), cfg.GRPCAddress())

	return &Plane{HTTP: httpServer, GRPC: grpcServer, Tracker: tracker}, nil
}

// Stop tears down both servers. Safe to call on a nil Plane.
func (p *Plane) Stop(ctx context.Context) {
	if p == nil {
		return
	}
	p.GRPC.SetServing(false)
	p.GRPC.Stop()
	if err := p.HTTP.Stop(ctx); err != nil {
		obslog.Errorf("control plane shutdown: %v", err)
	}
}
