// Command apiserver runs the chemidr HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		os.Exit(1)
	}
	defer a.Close()

	if *configPath != "" {
		config.Watch(*configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("log level reloaded", logging.String("level", next.Log.Level))
			}
		})
	}

	if cfg.PubChem.APIKey == "" {
		logger.Warn("no Entrez API key configured; MeSH lookups share the anonymous rate limit")
	}
	logger.Info("starting chemidr API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("database", cfg.Database.Enabled))

	if err := a.Serve(ctx, version); err != nil {
		logger.Error("server error", logging.Err(err))
		a.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

//Personal.AI order the ending
