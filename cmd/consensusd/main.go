package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-consensus/pkg/api"
	"github.com/dd0wney/cluso-consensus/pkg/cluster"
	"github.com/dd0wney/cluso-consensus/pkg/config"
	"github.com/dd0wney/cluso-consensus/pkg/logging"
	"github.com/dd0wney/cluso-consensus/pkg/metrics"
	"github.com/dd0wney/cluso-consensus/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "consensusd: %v\n", err)
		os.Exit(1)
	}

	// Flag wins over config file and environment
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "consensusd: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))

	logger.Info("Cluso Consensus starting",
		logging.Int("port", cfg.Server.Port),
		logging.String("log_level", cfg.Log.Level),
		logging.Bool("auth_enabled", cfg.AuthEnabled()),
		logging.Duration("election_timeout", cfg.Engine.ElectionTimeout),
		logging.Duration("heartbeat_interval", cfg.Engine.HeartbeatInterval),
	)

	registry := metrics.NewRegistry()

	engine, err := cluster.NewEngine(cluster.EngineConfig{
		Logger:                   logger.With(logging.Component("engine")),
		Metrics:                  registry,
		DefaultElectionTimeout:   cfg.Engine.ElectionTimeout,
		DefaultHeartbeatInterval: cfg.Engine.HeartbeatInterval,
	})
	if err != nil {
		logger.Error("Failed to create consensus engine", logging.Error(err))
		os.Exit(1)
	}

	apiServer, err := api.NewServer(engine, api.Options{
		Logger:       logger.With(logging.Component("api")),
		Metrics:      registry,
		AuthSecret:   cfg.Auth.Secret,
		TokenTTL:     cfg.Auth.TokenTTL,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("Failed to create API server", logging.Error(err))
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	gs := server.NewGracefulServer(addr, apiServer.Handler())
	gs.SetLogger(logger.With(logging.Component("http")))
	gs.SetTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

	// SIGHUP re-reads the config file. Only the log level can change at
	// runtime; server, auth, and engine settings need a restart.
	gs.SetConfigReloadFunc(func() error {
		reloaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		if err := reloaded.Validate(); err != nil {
			return err
		}
		logger.SetLevel(logging.ParseLevel(reloaded.Log.Level))
		logger.Info("Log level applied", logging.String("log_level", reloaded.Log.Level))
		return nil
	})

	apiServer.StartMetricsUpdater()
	defer apiServer.StopMetricsUpdater()

	if err := gs.Start(); err != nil {
		logger.Error("Server error", logging.Error(err))
		os.Exit(1)
	}
}
