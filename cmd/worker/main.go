// Command worker consumes chemidr batch resolution jobs from Kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/internal/interfaces/http/handlers"
)

var version = "dev"

const defaultHealthPort = 8081

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	jobTimeout := flag.Duration("job-timeout", 30*time.Minute, "upper bound for one job (0 = none)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics (0 = disabled)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Kafka.Enabled {
		fmt.Fprintln(os.Stderr, "kafka.enabled is false; nothing to consume")
		os.Exit(1)
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

	if *healthPort > 0 {
		healthSrv := startHealthServer(a, *healthPort, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = healthSrv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting chemidr worker",
		logging.String("version", version),
		logging.String("jobs_topic", cfg.Kafka.JobsTopic),
		logging.Strings("brokers", cfg.Kafka.Brokers))

	if err := a.RunWorker(ctx, app.WorkerOptions{JobTimeout: *jobTimeout, EnsureTopics: true}); err != nil {
		logger.Error("worker error", logging.Err(err))
		a.Close()
		os.Exit(1)
	}
}

// startHealthServer exposes probes and metrics for the orchestrator.
func startHealthServer(a *app.App, port int, logger logging.Logger) *http.Server {
	health := handlers.NewHealthHandler(version, a.HealthCheckers()...)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.Liveness)
	mux.HandleFunc("/readyz", health.Readiness)
	if a.Config.Metrics.Enabled {
		mux.Handle("/metrics", a.Collector.Handler())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}

//Personal.AI order the ending
