package app

import (
	"context"
	"time"

	"github.com/turtacn/chemidr/internal/application/jobs"
	"github.com/turtacn/chemidr/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
)

// WorkerOptions tunes RunWorker.
type WorkerOptions struct {
	// JobTimeout bounds a single resolution job.
	JobTimeout time.Duration
	// EnsureTopics creates the job topics before consuming.
	EnsureTopics bool
}

// RunWorker consumes resolve.requested jobs until ctx is cancelled. Results
// go to kafka.results_topic; jobs that keep failing go to kafka.dlq_topic.
func (a *App) RunWorker(ctx context.Context, opts WorkerOptions) error {
	kc := a.Config.Kafka
	logger := a.Logger.Named("worker")

	if opts.EnsureTopics {
		tm, err := kafka.NewTopicManager(kc.Brokers, logger)
		if err != nil {
			return err
		}
		err = tm.EnsureTopics(ctx, kafka.JobTopics(kc.JobsTopic, kc.ResultsTopic, kc.DLQTopic)...)
		_ = tm.Close()
		if err != nil {
			return err
		}
	}

	producer, err := a.NewProducer()
	if err != nil {
		return err
	}
	defer producer.Close()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		ResultsTopic: kc.ResultsTopic,
		Timeout:      opts.JobTimeout,
	}, a.Resolver, producer, a.Metrics, logger)
	if err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: kc.Brokers,
		GroupID: kc.GroupID,
		Topics:  []string{kc.JobsTopic},
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      kc.MaxRetries,
			RetryBackoff:    time.Second,
			MaxRetryBackoff: 30 * time.Second,
			DeadLetterTopic: kc.DLQTopic,
		},
	}, producer, logger)
	if err != nil {
		return err
	}
	consumer.Subscribe(kc.JobsTopic, worker.Handle)

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	logger.Info("stopping worker")
	if err := consumer.Close(); err != nil {
		logger.Warn("consumer close failed", logging.Err(err))
	}
	m := consumer.Metrics()
	logger.Info("worker stopped",
		logging.Int64("processed", m.MessagesProcessed.Load()),
		logging.Int64("dead_lettered", m.MessagesDeadLettered.Load()))
	return nil
}

//Personal.AI order the ending
