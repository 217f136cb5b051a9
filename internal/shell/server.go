package shell

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Server runs the shell until its context is cancelled.
type Server struct {
	server *http.Server
	log    *zap.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// NewServer wraps handler in an HTTP server.
func NewServer(handler http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithAddress sets the listen address.
func WithAddress(addr string) ServerOption {
	return func(s *Server) { s.server.Addr = addr }
}

// WithServerLogger sets the logger for lifecycle events.
func WithServerLogger(log *zap.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// Run listens until ctx is done, then shuts down gracefully, letting an
// in-flight conversion finish.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("starting HTTP server", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("stopping HTTP server", zap.String("address", s.server.Addr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
