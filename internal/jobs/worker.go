package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hourdesk/appointments-api/pkg/logging"
)

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 2
	defaultBatchSize   = 5
	maxWaitSeconds     = 20
	maxBatchSize       = 10
	deleteTimeout      = 5 * time.Second
)

// Handler processes one cancellation mail job. Returning an error leaves the
// message on the queue for redelivery.
type Handler func(ctx context.Context, snapshot AppointmentSnapshot) error

// Worker consumes jobs from the queue and invokes the handler. Delivery is
// at-least-once; the worker suppresses re-sends for appointment ids it has
// already handled in-process, and logs the duplicate.
type Worker struct {
	queue   queueClient
	handler Handler
	logger  *logging.Logger

	workers int
	wait    int
	batch   int

	mu      sync.Mutex
	handled map[string]struct{}
	wg      sync.WaitGroup
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*Worker)

// WithWorkerCount sets the number of concurrent consumers.
func WithWorkerCount(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithReceiveWait sets the long-poll wait in seconds.
func WithReceiveWait(seconds int) WorkerOption {
	return func(w *Worker) {
		if seconds > 0 && seconds <= maxWaitSeconds {
			w.wait = seconds
		}
	}
}

// NewWorker creates a worker bound to the queue and handler.
func NewWorker(queue queueClient, handler Handler, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("jobs: queue cannot be nil")
	}
	if handler == nil {
		panic("jobs: handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	w := &Worker{
		queue:   queue,
		handler: handler,
		logger:  logger,
		workers: defaultWorkerCount,
		wait:    defaultWaitSeconds,
		batch:   defaultBatchSize,
		handled: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.batch > maxBatchSize {
		w.batch = maxBatchSize
	}
	return w
}

// Run consumes until ctx is canceled, then waits for in-flight jobs.
func (w *Worker) Run(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.consume(ctx, id)
		}(i)
	}
	w.wg.Wait()
}

func (w *Worker) consume(ctx context.Context, id int) {
	logger := w.logger.With("consumer", id)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.batch, w.wait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("receive failed", "error", err)
			continue
		}

		for _, msg := range messages {
			w.process(ctx, logger, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, logger *logging.Logger, msg queueMessage) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Body), &env); err != nil {
		logger.Error("dropping undecodable job", "message_id", msg.ID, "error", err)
		w.delete(msg)
		return
	}

	if env.Key != KeyCancellationMail || env.Appointment == nil {
		logger.Warn("dropping job with unknown key", "message_id", msg.ID, "key", env.Key)
		w.delete(msg)
		return
	}

	if w.alreadyHandled(env.Appointment.ID.String()) {
		logger.Info("duplicate delivery suppressed",
			"job_id", env.ID,
			"appointment_id", env.Appointment.ID,
		)
		w.delete(msg)
		return
	}

	if err := w.handler(ctx, *env.Appointment); err != nil {
		// Leave the message for redelivery with the queue's own backoff.
		logger.Error("job failed, leaving for retry",
			"job_id", env.ID,
			"appointment_id", env.Appointment.ID,
			"error", err,
		)
		return
	}

	w.markHandled(env.Appointment.ID.String())
	logger.Info("job processed", "job_id", env.ID, "appointment_id", env.Appointment.ID)
	w.delete(msg)
}

func (w *Worker) delete(msg queueMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()
	if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		w.logger.Error("delete failed", "message_id", msg.ID, "error", err)
	}
}

func (w *Worker) alreadyHandled(appointmentID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.handled[appointmentID]
	return ok
}

func (w *Worker) markHandled(appointmentID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handled[appointmentID] = struct{}{}
}
