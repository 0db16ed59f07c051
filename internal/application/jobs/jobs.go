// Package jobs runs batch resolutions submitted through the message queue and
// publishes their results.
package jobs

import (
	"context"
	"time"

	"github.com/turtacn/chemidr/internal/application/resolver"
	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// ResolveJob is the payload of a resolve.requested event.
type ResolveJob struct {
	Names        []string `json:"names"`
	UseRemote    bool     `json:"use_remote"`
	UseLocal     bool     `json:"use_local"`
	WithInChIKey bool     `json:"with_inchikey"`
	Source       string   `json:"source,omitempty"`
}

// JobResult is the payload of a resolve.completed event.
type JobResult struct {
	RequestID string                        `json:"request_id"`
	Run       chemical.Run                  `json:"run"`
	Results   []chemical.ResolvedIdentifier `json:"results"`
	Persisted bool                          `json:"persisted"`
}

// Job statuses used as metric labels.
const (
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

// Metrics records job outcomes.
type Metrics interface {
	IncJob(status string)
}

type nopMetrics struct{}

func (nopMetrics) IncJob(string) {}

// Worker handles resolve.requested messages.
type Worker struct {
	resolver     resolver.Service
	publisher    kafka.Publisher
	resultsTopic string
	timeout      time.Duration
	metrics      Metrics
	logger       logging.Logger
}

// WorkerConfig tunes the Worker.
type WorkerConfig struct {
	ResultsTopic string
	// Timeout bounds one job; zero means no limit beyond the consumer's context.
	Timeout time.Duration
}

// NewWorker creates a Worker. metrics may be nil.
func NewWorker(cfg WorkerConfig, svc resolver.Service, pub kafka.Publisher, metrics Metrics, logger logging.Logger) (*Worker, error) {
	if svc == nil || pub == nil {
		return nil, errors.New(errors.ErrCodeValidation, "resolver and publisher are required")
	}
	if cfg.ResultsTopic == "" {
		return nil, errors.New(errors.ErrCodeValidation, "results topic is required")
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Worker{
		resolver:     svc,
		publisher:    pub,
		resultsTopic: cfg.ResultsTopic,
		timeout:      cfg.Timeout,
		metrics:      metrics,
		logger:       logger.Named("jobs"),
	}, nil
}

// Handle implements kafka.MessageHandler. Malformed jobs return client errors
// so the consumer dead-letters them without retrying.
func (w *Worker) Handle(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		w.metrics.IncJob(StatusRejected)
		return err
	}
	if env.EventType != kafka.EventResolveRequested {
		w.metrics.IncJob(StatusRejected)
		return errors.InvalidParam("unexpected event type").WithDetail(env.EventType)
	}
	var job ResolveJob
	if err := env.DecodePayload(&job); err != nil {
		w.metrics.IncJob(StatusRejected)
		return err
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	source := job.Source
	if source == "" {
		source = "kafka:" + env.EventID
	}
	out, err := w.resolver.ResolveBatch(ctx, &resolver.BatchInput{
		Names:        job.Names,
		UseRemote:    job.UseRemote,
		UseLocal:     job.UseLocal,
		WithInChIKey: job.WithInChIKey,
		Source:       source,
	})
	if err != nil {
		if errors.IsClientError(errors.GetCode(err)) {
			w.metrics.IncJob(StatusRejected)
		} else {
			w.metrics.IncJob(StatusFailed)
		}
		return err
	}

	reply, err := kafka.NewEventEnvelope(kafka.EventResolveCompleted, "chemidr-worker", JobResult{
		RequestID: env.EventID,
		Run:       out.Run,
		Results:   out.Results,
		Persisted: out.Persisted,
	})
	if err != nil {
		w.metrics.IncJob(StatusFailed)
		return err
	}
	pm, err := reply.ToMessage(w.resultsTopic, msg.Key)
	if err != nil {
		w.metrics.IncJob(StatusFailed)
		return err
	}
	if err := w.publisher.Publish(ctx, pm); err != nil {
		w.metrics.IncJob(StatusFailed)
		return err
	}

	w.metrics.IncJob(StatusCompleted)
	w.logger.Info("job completed",
		logging.String("request_id", env.EventID),
		logging.String("run_id", out.Run.ID),
		logging.Int("names", len(job.Names)),
		logging.Float64("coverage", out.Run.Summary.Coverage()))
	return nil
}

// Submitter publishes resolve jobs.
type Submitter struct {
	publisher kafka.Publisher
	topic     string
}

// NewSubmitter creates a Submitter writing to topic.
func NewSubmitter(pub kafka.Publisher, topic string) *Submitter {
	return &Submitter{publisher: pub, topic: topic}
}

// Submit enqueues job and returns its request id, which is echoed in the
// matching JobResult.
func (s *Submitter) Submit(ctx context.Context, job ResolveJob) (string, error) {
	if len(job.Names) == 0 {
		return "", errors.InvalidParam("at least one name is required")
	}
	env, err := kafka.NewEventEnvelope(kafka.EventResolveRequested, "chemidr", job)
	if err != nil {
		return "", err
	}
	pm, err := env.ToMessage(s.topic, []byte(env.EventID))
	if err != nil {
		return "", err
	}
	if err := s.publisher.Publish(ctx, pm); err != nil {
		return "", err
	}
	return env.EventID, nil
}

//Personal.AI order the ending
