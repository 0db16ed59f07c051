package app

import (
	"context"
	stdhttp "net/http"

	"github.com/turtacn/chemidr/internal/application/jobs"
	"github.com/turtacn/chemidr/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	httpiface "github.com/turtacn/chemidr/internal/interfaces/http"
	"github.com/turtacn/chemidr/internal/interfaces/http/handlers"
	"github.com/turtacn/chemidr/internal/interfaces/http/middleware"
	"github.com/turtacn/chemidr/pkg/errors"
)

// NewProducer creates a Kafka producer from kafka.* settings.
func (a *App) NewProducer() (*kafka.Producer, error) {
	if !a.Config.Kafka.Enabled {
		return nil, errors.New(errors.ErrCodeValidation, "kafka is not enabled")
	}
	return kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    a.Config.Kafka.Brokers,
		Acks:       "all",
		MaxRetries: a.Config.Kafka.MaxRetries,
	}, a.Logger.Named("kafka"))
}

// Router builds the HTTP handler tree. submitter may be nil, which leaves
// the job endpoint unmounted.
func (a *App) Router(version string, submitter handlers.JobSubmitter) stdhttp.Handler {
	srv := a.Config.Server
	defaults := handlers.ResolveDefaults{
		UseRemote: a.Config.Resolver.UseRemote,
		UseLocal:  a.Config.Resolver.UseLocal,
	}

	rc := httpiface.RouterConfig{
		ResolveHandler: handlers.NewResolveHandler(a.Resolver, defaults, srv.MaxBodySize, srv.MaxBatch, a.Logger),
		HealthHandler:  handlers.NewHealthHandler(version, a.HealthCheckers()...),
		RateLimiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: srv.RateLimit,
			Burst:             srv.RateBurst,
		}),
		Logger: a.Logger.Named("http"),
	}
	if submitter != nil {
		rc.JobHandler = handlers.NewJobHandler(submitter, defaults, srv.MaxBodySize)
	}
	if a.Config.Metrics.Enabled {
		rc.HTTPMetrics = a.Metrics
		rc.MetricsHandler = a.Collector.Handler()
	}
	return httpiface.NewRouter(rc)
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests. With Kafka enabled POST /api/v1/jobs enqueues batch jobs.
func (a *App) Serve(ctx context.Context, version string) error {
	var submitter handlers.JobSubmitter
	if a.Config.Kafka.Enabled {
		producer, err := a.NewProducer()
		if err != nil {
			return err
		}
		defer producer.Close()
		submitter = jobs.NewSubmitter(producer, a.Config.Kafka.JobsTopic)
	}

	server := httpiface.NewServer(a.Config.Server, a.Router(version, submitter), a.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down HTTP server")
	if err := server.Stop(context.Background()); err != nil {
		a.Logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	return nil
}

//Personal.AI order the ending
