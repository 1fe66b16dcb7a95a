package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/logging"
)

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server         *http.Server
	logger         logging.Logger
	shutdownCh     chan struct{}
	shutdownOnce   sync.Once
	configReloadFn ConfigReloadFunc
	configMu       sync.RWMutex
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler) *GracefulServer {
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger:     logging.DefaultLogger(),
		shutdownCh: make(chan struct{}),
	}
}

// SetLogger replaces the server's logger. Must be called before Start.
func (gs *GracefulServer) SetLogger(logger logging.Logger) {
	if logger != nil {
		gs.logger = logger
	}
}

// SetTimeouts overrides the default read, write, and idle timeouts.
// Must be called before Start.
func (gs *GracefulServer) SetTimeouts(read, write, idle time.Duration) {
	if read > 0 {
		gs.server.ReadTimeout = read
	}
	if write > 0 {
		gs.server.WriteTimeout = write
	}
	if idle > 0 {
		gs.server.IdleTimeout = idle
	}
}

// Start starts the server and handles graceful shutdown signals
func (gs *GracefulServer) Start() error {
	// Handle shutdown signals
	go gs.handleSignals()

	gs.logger.Info("Starting HTTP server", logging.String("addr", gs.server.Addr))
	if err := gs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown initiates a graceful shutdown
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("Initiating graceful shutdown", logging.Duration("timeout", timeout))

		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.logger.Error("Error during shutdown", logging.Error(shutdownErr))
		} else {
			gs.logger.Info("Server shutdown complete")
		}
	})
	return err
}

// handleSignals listens for OS signals and triggers graceful shutdown
func (gs *GracefulServer) handleSignals() {
	sigCh := make(chan os.Signal, 1)

	// Listen for signals
	signal.Notify(sigCh,
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // Termination signal (systemd, docker, k8s)
		syscall.SIGHUP,  // Reload configuration
		syscall.SIGUSR1, // Custom: trigger rolling restart
	)

	for sig := range sigCh {
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			gs.logger.Info("Received shutdown signal", logging.String("signal", sig.String()))
			if err := gs.Shutdown(30 * time.Second); err != nil {
				gs.logger.Error("Shutdown error", logging.Error(err))
				os.Exit(1)
			}
			os.Exit(0)

		case syscall.SIGHUP:
			gs.logger.Info("Received SIGHUP signal, triggering configuration reload")
			if err := gs.ReloadConfig(); err != nil {
				gs.logger.Error("Configuration reload error", logging.Error(err))
			}

		case syscall.SIGUSR1:
			gs.logger.Info("Received SIGUSR1 signal, preparing for rolling restart")
			// Delay before draining so load balancer health checks
			// have a chance to mark this instance out of rotation
			go func() {
				time.Sleep(5 * time.Second)
				if err := gs.Shutdown(30 * time.Second); err != nil {
					gs.logger.Error("Rolling restart shutdown error", logging.Error(err))
				}
			}()
		}
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("Configuration reload requested, but no reload function configured")
		return nil
	}

	gs.logger.Info("Reloading configuration")
	if err := reloadFn(); err != nil {
		gs.logger.Error("Configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("Configuration reload complete")
	return nil
}
