package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewradar/reviewradar/internal/bridge"
	"github.com/reviewradar/reviewradar/internal/monitor"
)

// RegisterCommands builds the closed command set exposed over the bridge.
//
//   - refresh: replace the armed trigger and run one pass, returns the descriptor
//   - status:  the last derived descriptor
//   - changes: the last pass's reviews grouped by attention category
//   - hosts:   configured host names
func RegisterCommands(mon *monitor.Monitor, sched *monitor.Scheduler) map[string]bridge.Operation {
	return map[string]bridge.Operation{
		"refresh": func(ctx context.Context, _ []any) (any, error) {
			if err := sched.OnDemandRefresh(ctx); err != nil {
				return nil, err
			}
			snap, _ := mon.Last()
			return snap.Descriptor, nil
		},
		"status": func(_ context.Context, _ []any) (any, error) {
			snap, ok := mon.Last()
			if !ok {
				return nil, errors.New("no pass completed yet")
			}
			return snap.Descriptor, nil
		},
		"changes": func(_ context.Context, _ []any) (any, error) {
			snap, ok := mon.Last()
			if !ok {
				return nil, errors.New("no pass completed yet")
			}
			return snap.Categories, nil
		},
		"hosts": func(_ context.Context, _ []any) (any, error) {
			names := make([]string, 0, len(mon.Hosts()))
			for _, h := range mon.Hosts() {
				names = append(names, h.Name)
			}
			return names, nil
		},
	}
}

// rpc handles the bridge transport. The request body is a JSON array whose
// first element is the command name and remainder are positional arguments.
// The response envelope is {"value": ...} or {"error": {kind, message,
// retryable}}. HTTP status stays 200 for settled commands; only a malformed
// request is a transport error.
func rpc(b *bridge.Bridge) func(c echo.Context) error {
	return func(c echo.Context) error {
		var request []any
		if err := c.Bind(&request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "request must be a JSON array")
		}
		if len(request) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "request array is empty")
		}
		command, ok := request[0].(string)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "command name must be a string")
		}

		// This transport holds the connection open, so deferred and
		// synchronous settlement look the same here.
		return c.JSON(http.StatusOK, b.Handle(c.Request().Context(), command, request[1:]))
	}
}

// refresh triggers an on-demand pass and returns the derived descriptor.
func refresh(mon *monitor.Monitor, sched *monitor.Scheduler) func(c echo.Context) error {
	return func(c echo.Context) error {
		if err := sched.OnDemandRefresh(c.Request().Context()); err != nil {
			var configErr *monitor.ConfigError
			if errors.As(err, &configErr) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": configErr.Error()})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		snap, _ := mon.Last()
		return c.JSON(http.StatusOK, snap.Descriptor)
	}
}

// status returns the latest snapshot, or 404 before the first pass completes.
func status(mon *monitor.Monitor) func(c echo.Context) error {
	return func(c echo.Context) error {
		snap, ok := mon.Last()
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no pass completed yet"})
		}
		return c.JSON(http.StatusOK, snap)
	}
}
