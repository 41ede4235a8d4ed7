// Package engineconfig loads the engine's ambient configuration: worker
// pool sizing and the optional control-plane (metrics/health) surface. The
// core kernel dispatch takes its parameters from the shared-memory header,
// not from here — this package only governs how the engine process itself
// runs.
package engineconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all engine process configuration.
type Config struct {
	Workers      WorkersConfig
	ControlPlane ControlPlaneConfig
	Log          LogConfig
}

// WorkersConfig controls the fork-join pool's parallelism.
type WorkersConfig struct {
	Override int // 0 means let the pool pick runtime.NumCPU()
}

// ControlPlaneConfig governs the optional HTTP/gRPC observability surface
// that runs alongside the kernel computation.
type ControlPlaneConfig struct {
	Enabled bool

	HTTPHost string
	HTTPPort int

	GRPCHost string
	GRPCPort int

	AuthEnabled bool
	JWTSecret   string

	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int

	ShutdownTimeout time.Duration
}

// LogConfig governs the ambient structured logger.
type LogConfig struct {
	Level string // one of DEBUG, INFO, WARN, ERROR, FATAL
}

// Default returns the engine's default configuration: worker count
// auto-detected, control plane disabled.
func Default() *Config {
	return &Config{
		Workers: WorkersConfig{Override: 0},
		ControlPlane: ControlPlaneConfig{
			Enabled:          false,
			HTTPHost:         "127.0.0.1",
			HTTPPort:         9090,
			GRPCHost:         "127.0.0.1",
			GRPCPort:         9091,
			AuthEnabled:      false,
			RateLimitEnabled: false,
			RateLimitPerSec:  50,
			RateLimitBurst:   100,
			ShutdownTimeout:  5 * time.Second,
		},
		Log: LogConfig{Level: "INFO"},
	}
}

// LoadFromEnv layers environment variables over Default.
func LoadFromEnv() *Config {
	cfg := Default()

	if w := os.Getenv("ENGINE_WORKERS"); w != "" {
		if v, err := strconv.Atoi(w); err == nil {
			cfg.Workers.Override = v
		}
	}

	if v := os.Getenv("ENGINE_CONTROL_PLANE"); v == "true" {
		cfg.ControlPlane.Enabled = true
	}
	if v := os.Getenv("ENGINE_HTTP_HOST"); v != "" {
		cfg.ControlPlane.HTTPHost = v
	}
	if v := os.Getenv("ENGINE_HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.ControlPlane.HTTPPort = p
		}
	}
	if v := os.Getenv("ENGINE_GRPC_HOST"); v != "" {
		cfg.ControlPlane.GRPCHost = v
	}
	if v := os.Getenv("ENGINE_GRPC_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.ControlPlane.GRPCPort = p
		}
	}
	if v := os.Getenv("ENGINE_AUTH_ENABLED"); v == "true" {
		cfg.ControlPlane.AuthEnabled = true
		cfg.ControlPlane.JWTSecret = os.Getenv("ENGINE_JWT_SECRET")
	}
	if v := os.Getenv("ENGINE_RATE_LIMIT_ENABLED"); v == "true" {
		cfg.ControlPlane.RateLimitEnabled = true
	}
	if v := os.Getenv("ENGINE_RATE_LIMIT_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ControlPlane.RateLimitPerSec = f
		}
	}
	if v := os.Getenv("ENGINE_RATE_LIMIT_BURST"); v != "" {
		if b, err := strconv.Atoi(v); err == nil {
			cfg.ControlPlane.RateLimitBurst = b
		}
	}
	if v := os.Getenv("ENGINE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ControlPlane.ShutdownTimeout = d
		}
	}

	if v := os.Getenv("ENGINE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Workers.Override < 0 {
		return fmt.Errorf("invalid worker override: %d (must be >= 0)", c.Workers.Override)
	}

	if c.ControlPlane.Enabled {
		if c.ControlPlane.HTTPPort < 1 || c.ControlPlane.HTTPPort > 65535 {
			return fmt.Errorf("invalid control plane HTTP port: %d", c.ControlPlane.HTTPPort)
		}
		if c.ControlPlane.GRPCPort < 1 || c.ControlPlane.GRPCPort > 65535 {
			return fmt.Errorf("invalid control plane gRPC port: %d", c.ControlPlane.GRPCPort)
		}
		if c.ControlPlane.HTTPPort == c.ControlPlane.GRPCPort {
			return fmt.Errorf("control plane HTTP and gRPC ports must differ: both %d", c.ControlPlane.HTTPPort)
		}
		if c.ControlPlane.AuthEnabled && c.ControlPlane.JWTSecret == "" {
			return fmt.Errorf("control plane auth enabled but no JWT secret configured")
		}
		if c.ControlPlane.RateLimitEnabled && c.ControlPlane.RateLimitPerSec <= 0 {
			return fmt.Errorf("invalid rate limit: %.2f req/s (must be > 0)", c.ControlPlane.RateLimitPerSec)
		}
	}

	switch c.Log.Level {
	case "DEBUG", "INFO", "WARN", "ERROR", "FATAL":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}

	return nil
}

// HTTPAddress returns the control plane's HTTP host:port.
func (c *ControlPlaneConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// GRPCAddress returns the control plane's gRPC host:port.
func (c *ControlPlaneConfig) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPCHost, c.GRPCPort)
}
