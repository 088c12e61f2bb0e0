// Package server exposes the restaurant backend over JSON-RPC 2.0 so the
// staff can run against a shared database process instead of in-process
// storage.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/restaurant"
)

// Options configures the backend server.
type Options struct {
	Logger logging.Logger
}

// Server serves backend operations at POST /rpc. Method names match the
// tool names the staff use, params are the tool arguments as an object.
type Server struct {
	echo    *echo.Echo
	backend restaurant.Backend
	logger  logging.Logger
}

// New creates a backend server around the given backend implementation.
func New(backend restaurant.Backend, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			opts.Logger.Info("http.request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start).String(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	})

	s := &Server{echo: e, backend: backend, logger: opts.Logger}

	e.GET("/health", s.handleHealth)
	e.POST("/rpc", s.handleRPC)

	return s
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRPC(c echo.Context) error {
	var req restaurant.RPCRequest
	if err := c.Bind(&req); err != nil {
		return rpcFailure(c, nil, restaurant.RPCParseError, fmt.Errorf("invalid JSON-RPC request: %w", err))
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		return rpcFailure(c, req.ID, restaurant.RPCInvalidRequest, fmt.Errorf("not a JSON-RPC 2.0 request"))
	}

	result, err := s.dispatch(c.Request().Context(), req.Method, req.Params)

	switch {
	case err == nil:
		return rpcSuccess(c, req.ID, result)
	case errIsUnknownMethod(err):
		return rpcFailure(c, req.ID, restaurant.RPCMethodNotFound, err)
	case errIsBadParams(err):
		return rpcFailure(c, req.ID, restaurant.RPCInvalidParams, err)
	default:
		s.logger.Error("rpc.dispatch.failed", "method", req.Method, "error", err)
		return rpcFailure(c, req.ID, restaurant.RPCInternalError, err)
	}
}

func rpcSuccess(c echo.Context, id any, result map[string]any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return rpcFailure(c, id, restaurant.RPCInternalError, err)
	}

	return c.JSON(http.StatusOK, restaurant.RPCResponse{JSONRPC: "2.0", ID: id, Result: raw})
}

func rpcFailure(c echo.Context, id any, code int, err error) error {
	return c.JSON(http.StatusOK, restaurant.RPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &restaurant.RPCError{Code: code, Message: err.Error()},
	})
}
