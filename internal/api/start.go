package api

import (
	"context"
	"fmt"
	"runtime"

	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/reviewradar/reviewradar/internal/bridge"
	"github.com/reviewradar/reviewradar/internal/config"
	"github.com/reviewradar/reviewradar/internal/monitor"
)

// Start wires the HTTP surface over an already-constructed monitor and
// scheduler and serves until ctx is cancelled.
func Start(ctx context.Context, cfg config.AppConfiguration, mon *monitor.Monitor, sched *monitor.Scheduler) error {

	// Echo instance
	e := echo.New()
	e.HideBanner = true

	switch cfg.GetString("log_level", "info") {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "warn":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	default:
		e.Logger.SetLevel(log.INFO)
	}

	b, err := bridge.New(RegisterCommands(mon, sched))
	if err != nil {
		return fmt.Errorf("error building command bridge: %w", err)
	}
	e.Logger.Info(fmt.Sprintf("Bridge commands: %v", b.Commands()))

	healthMetrics := NewHealthMetrics()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(APIKeyAuthMiddleware(cfg))
	e.Use(HealthMetricsMiddleware(healthMetrics))

	// Health check endpoints (no auth required)
	e.GET("/healthz", Healthz())
	e.GET("/readyz", Readyz(mon, healthMetrics))

	if cfg.GetBool("profiling_enabled", false) {
		enableProfiling(e)
	}

	/*
		- POST /rpc: bridge transport, body is [command, ...args]
		- POST /refresh: on-demand refresh, returns the derived descriptor
		- GET  /status: latest snapshot (descriptor, outcome, categories)
	*/
	e.POST("/rpc", rpc(b))
	e.POST("/refresh", refresh(mon, sched))
	e.GET("/status", status(mon))

	go func() {
		<-ctx.Done()
		sched.Stop()
		if err := e.Close(); err != nil {
			e.Logger.Error("Failed to close Echo server: ", err)
		}
	}()

	e.Logger.Info(fmt.Sprintf("Starting server on %s", cfg.ListenAddress()))
	return e.Start(cfg.ListenAddress())
}

// enableProfiling registers pprof endpoints and turns on the runtime probes.
func enableProfiling(e *echo.Echo) {
	e.Logger.Info("Enabling profiling - this may impact performance")

	runtime.SetBlockProfileRate(500)
	runtime.SetMutexProfileFraction(1)
	runtime.SetCPUProfileRate(30)

	pprof.Register(e)
}
