// Command engine computes all-pairs nearest neighbors over a point cloud
// the caller has already written into a System V shared memory segment,
// writing the sorted neighbor lists and rank matrix back into the same
// segment. Usage: engine <shmKey> <shmSize>.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/controlplane"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/engineconfig"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/obslog"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/shm"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/workerpool"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors/kernel"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := engineconfig.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	obslog.SetGlobalLogger(obslog.NewLogger(obslog.ParseLogLevel(cfg.Log.Level), os.Stderr))

	plane, err := controlplane.Start(cfg.ControlPlane)
	if err != nil {
		obslog.Errorf("control plane failed to start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ControlPlane.ShutdownTimeout)
		defer cancel()
		plane.Stop(ctx)
	}()

	key, size, err := parseArgs(args)
	if err != nil {
		controlplane.Metrics.RecordRunError("invalid_arguments")
		fmt.Fprintln(os.Stderr, "Invalid arguments")
		return 1
	}

	start := time.Now()

	attachStart := time.Now()
	segment, err := shm.Attach(key, size)
	if err != nil {
		controlplane.Metrics.RecordRunError("shm_attach_failed")
		obslog.Errorf("attach failed: %v", err)
		fmt.Fprintln(os.Stderr, "Failed to attach shared memory")
		return 1
	}
	controlplane.Metrics.RecordShmAttach(time.Since(attachStart), size)
	obslog.GetGlobalLogger().WithFields(map[string]interface{}{
		"duration": time.Since(attachStart),
		"bytes":    size,
	}).Info("attached shared segment")
	if plane != nil {
		plane.Tracker.Set(controlplane.RunStatus{Phase: "computing", StartedAt: start})
	}

	params, err := segment.ReadParameters()
	if err != nil {
		controlplane.Metrics.RecordRunError("invalid_parameters")
		fmt.Fprintln(os.Stderr, "Invalid arguments")
		return 1
	}
	if !params.DistanceMetric.Valid() {
		controlplane.Metrics.RecordRunError("invalid_metric")
		fmt.Fprintln(os.Stderr, "Invalid distance metric")
		return 1
	}
	if !params.Dimensions.Valid() {
		controlplane.Metrics.RecordRunError("invalid_dimensions")
		fmt.Fprintln(os.Stderr, "Invalid dimensions")
		return 1
	}

	view, err := segment.NewView()
	if err != nil {
		controlplane.Metrics.RecordRunError("invalid_layout")
		obslog.Errorf("header/layout validation failed: %v", err)
		fmt.Fprintln(os.Stderr, "Invalid arguments")
		return 1
	}

	workers := cfg.Workers.Override
	if workers == 0 {
		workers = workerpool.DefaultWorkers()
	}

	obslog.GetGlobalLogger().WithFields(map[string]interface{}{
		"metric":     params.DistanceMetric.String(),
		"dimensions": params.Dimensions,
		"datapoints": params.DatapointAmount,
		"workers":    workers,
		"positions_bytes": int(params.DatapointAmount) * params.Dimensions.PositionSize(),
		"pairs_bytes":     int(params.DatapointAmount) * int(params.DatapointAmount) * neighbors.DistanceIndexPairSize,
		"ranks_bytes":     int(params.DatapointAmount) * int(params.DatapointAmount) * neighbors.RankSize,
	}).Info("starting kernel run")

	if plane != nil {
		plane.Tracker.Set(controlplane.RunStatus{
			Phase:      "computing",
			Metric:     params.DistanceMetric.String(),
			Dimensions: uint16(params.Dimensions),
			Datapoints: params.DatapointAmount,
			Workers:    workers,
			StartedAt:  start,
		})
	}

	controlplane.Metrics.SetWorkersActive(workers)

	kernelStart := time.Now()
	if err := kernel.Run(params, view.Positions2D, view.Positions768D, view.Pairs, view.Ranks, workers); err != nil {
		controlplane.Metrics.RecordRunError("invalid_dimensions")
		obslog.Errorf("kernel run failed: %v", err)
		fmt.Fprintln(os.Stderr, "Invalid dimensions")
		return 1
	}
	kernelDuration := time.Since(kernelStart)
	controlplane.Metrics.RecordKernel(params.DistanceMetric.String(), fmt.Sprint(int(params.Dimensions)), kernelDuration, int(params.DatapointAmount))
	controlplane.Metrics.RecordRowsProcessed(int(params.DatapointAmount))
	obslog.GetGlobalLogger().WithField("duration", kernelDuration).Info("kernel run complete")

	view.Flush(segment)

	if err := segment.Detach(); err != nil {
		controlplane.Metrics.RecordRunError("shm_detach_failed")
		controlplane.Metrics.RecordRun(params.DistanceMetric.String(), fmt.Sprint(int(params.Dimensions)), "detach_failed", time.Since(start))
		obslog.Errorf("detach failed: %v", err)
		fmt.Fprintln(os.Stderr, "Failed to detach shared memory")
		if plane != nil {
			plane.Tracker.Set(controlplane.RunStatus{Phase: "failed", Error: err.Error(), StartedAt: start})
		}
		return 1
	}

	controlplane.Metrics.RecordRun(params.DistanceMetric.String(), fmt.Sprint(int(params.Dimensions)), "success", time.Since(start))
	if plane != nil {
		plane.Tracker.Set(controlplane.RunStatus{Phase: "done", StartedAt: start})
	}
	obslog.GetGlobalLogger().WithField("total_duration", time.Since(start)).Info("run complete")

	return 0
}

func parseArgs(args []string) (key, size int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	key, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shmKey: %w", err)
	}
	size, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shmSize: %w", err)
	}
	return key, size, nil
}
