package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hourdesk/appointments-api/pkg/logging"
)

// Publisher enqueues jobs for the external worker. Enqueue returns once the
// transport accepts the message, not once the job runs.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher wires a publisher to a queue transport.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("jobs: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// EnqueueCancellationMail publishes a cancellation mail job. Failures come
// back wrapped in ErrDispatch and must not undo the cancellation itself.
func (p *Publisher) EnqueueCancellationMail(ctx context.Context, snapshot AppointmentSnapshot) error {
	env := envelope{
		ID:          uuid.NewString(),
		Key:         KeyCancellationMail,
		Appointment: &snapshot,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("jobs: failed to encode %s payload: %w", env.Key, err)
	}

	if err := p.queue.Send(ctx, string(body)); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrDispatch, env.Key, err)
	}

	p.logger.Info("job enqueued",
		"job_id", env.ID,
		"key", env.Key,
		"appointment_id", snapshot.ID,
	)
	return nil
}
