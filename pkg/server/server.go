// Package server runs an HTTP server until its context ends or a stop
// signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	stopWaitTime = 5 * time.Second

	defReadHeaderTimeout = 10 * time.Second
)

type Config struct {
	Host     string `env:"HOST"      envDefault:"localhost"`
	Port     string `env:"PORT"      envDefault:""`
	CertFile string `env:"SERVER_CERT" envDefault:""`
	KeyFile  string `env:"SERVER_KEY"  envDefault:""`
}

type Server interface {
	Start() error
	Stop() error
}

type httpServer struct {
	ctx    context.Context
	cancel context.CancelFunc
	name   string
	config Config
	server *http.Server
	logger *slog.Logger
}

var _ Server = (*httpServer)(nil)

func NewHTTP(ctx context.Context, cancel context.CancelFunc, name string, config Config, handler http.Handler, logger *slog.Logger) Server {
	return &httpServer{
		ctx:    ctx,
		cancel: cancel,
		name:   name,
		config: config,
		server: &http.Server{
			Addr:              net.JoinHostPort(config.Host, config.Port),
			Handler:           handler,
			ReadHeaderTimeout: defReadHeaderTimeout,
		},
		logger: logger,
	}
}

// Start serves until Stop is called. TLS is used when both a certificate and
// a key are configured.
func (s *httpServer) Start() error {
	errCh := make(chan error, 1)
	protocol := "http"

	switch {
	case s.config.CertFile != "" && s.config.KeyFile != "":
		protocol = "https"
		s.logger.Info(fmt.Sprintf("%s service %s server listening at %s with TLS", s.name, protocol, s.server.Addr))
		go func() {
			errCh <- s.server.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
		}()
	default:
		s.logger.Info(fmt.Sprintf("%s service %s server listening at %s without TLS", s.name, protocol, s.server.Addr))
		go func() {
			errCh <- s.server.ListenAndServe()
		}()
	}

	select {
	case <-s.ctx.Done():
		return s.Stop()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}

func (s *httpServer) Stop() error {
	defer s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), stopWaitTime)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("%s service http server error occurred during shutdown at %s: %s", s.name, s.server.Addr, err))

		return fmt.Errorf("%s service occurred during shutdown at %s: %w", s.name, s.server.Addr, err)
	}
	s.logger.Info(fmt.Sprintf("%s http service shutdown of http at %s", s.name, s.server.Addr))

	return nil
}

// StopSignalHandler stops the servers on SIGINT or SIGTERM and reports the
// signal as an error so an errgroup unwinds.
func StopSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, svcName string, servers ...Server) error {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		defer cancel()
		var err error
		for _, s := range servers {
			err = errors.Join(err, s.Stop())
		}
		logger.Info(fmt.Sprintf("%s service shutdown by signal: %s", svcName, sig))

		return errors.Join(fmt.Errorf("%s service stopped by signal %s", svcName, sig), err)
	case <-ctx.Done():
		return nil
	}
}
