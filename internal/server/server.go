package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/winterSteve25/props/internal/store"
	coregrpc "github.com/winterSteve25/props/pkg/core/grpc"
	"github.com/winterSteve25/props/pkg/core/health"
	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/core/version"
)

// Config holds listener settings for both transports
type Config struct {
	GRPCAddr        string
	WSAddr          string
	ShutdownTimeout time.Duration
	Reflection      bool
}

// Server runs the gRPC service and the WebSocket/HTTP endpoint side by side
type Server struct {
	config  Config
	service *Service
	grpc    *coregrpc.Server
	http    *http.Server
	health  *health.Registry
	logger  *propslog.Logger
}

// New wires svc into both transports
func New(cfg Config, svc *Service, logger *propslog.Logger) *Server {
	if logger == nil {
		logger = propslog.GetDefault()
	}

	grpcCfg := coregrpc.DefaultServerConfig(cfg.GRPCAddr)
	grpcCfg.EnableReflection = cfg.Reflection
	grpcCfg.Logger = logger
	grpcServer := coregrpc.NewServer(grpcCfg)
	RegisterPropsServer(grpcServer.GRPCServer(), NewGRPCHandler(svc))

	s := &Server{
		config:  cfg,
		service: svc,
		grpc:    grpcServer,
		health:  health.NewRegistry("props", version.Service),
		logger:  logger.WithField("component", "server"),
	}
	s.registerChecks()

	s.http = &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes: /ws and /health
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(s.service, s.logger))
	mux.Handle("/health", s.health.Handler())
	return mux
}

// GRPC returns the gRPC server wrapper
func (s *Server) GRPC() *coregrpc.Server {
	return s.grpc
}

// Health returns the health registry
func (s *Server) Health() *health.Registry {
	return s.health
}

func (s *Server) registerChecks() {
	s.health.RegisterFunc("pipeline", func(ctx context.Context) health.CheckResult {
		unit, err := s.service.pipeline.RunNamed(ctx, "health-probe", "probe: I32 = 1")
		if err != nil {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
		}
		if len(unit.Diagnostics) != 0 {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: unit.Diagnostics[0].Error()}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: "Probe parsed"}
	})

	s.health.RegisterFunc("history", func(ctx context.Context) health.CheckResult {
		history := s.service.History()
		if history == nil {
			return health.CheckResult{Status: health.StatusHealthy, Message: "History disabled"}
		}
		stats, err := history.Stats(ctx)
		if err != nil {
			return health.CheckResult{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.CheckResult{Status: health.StatusHealthy, Details: stats}
	})

	s.health.RegisterFunc("cache", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{Status: health.StatusHealthy, Details: s.service.CacheStats()}
	})
}

// Run starts both transports and blocks until ctx is cancelled or one of
// them fails, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	grpcLis, err := net.Listen("tcp", s.config.GRPCAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", s.config.WSAddr)
	if err != nil {
		grpcLis.Close()
		return err
	}
	return s.Serve(ctx, grpcLis, httpLis)
}

// Serve runs both transports on the given listeners
func (s *Server) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	errCh := make(chan error, 2)

	s.grpc.SetServing(ServiceName, true)
	go func() {
		errCh <- s.grpc.Serve(grpcLis)
	}()
	go func() {
		s.logger.Info("WebSocket endpoint listening", propslog.Fields{"addr": httpLis.Addr().String()})
		if err := s.http.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		s.logger.ErrorWithErr("Transport failed", runErr)
	}

	s.shutdown()
	return runErr
}

func (s *Server) shutdown() {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.grpc.SetServing(ServiceName, false)
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.ErrorWithErr("HTTP shutdown failed", err)
	}
	s.grpc.StopWithTimeout(ctx)

	if err := s.service.Close(); err != nil {
		s.logger.ErrorWithErr("Failed to close service", err)
	}
	s.logger.Info("Server stopped")
}

// OpenHistory opens the SQLite history store when enabled
func OpenHistory(enabled bool, path string) (store.HistoryStore, error) {
	if !enabled {
		return nil, nil
	}
	history, err := store.NewSQLiteHistoryStore(store.SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	return history, nil
}
