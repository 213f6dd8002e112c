// Package jobs moves asynchronous work (currently only cancellation mail)
// from the scheduling core to an external consumer. Delivery is at-least-once;
// consumers dedupe by appointment id and job key.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// KeyCancellationMail identifies the cancellation email job type on the wire.
const KeyCancellationMail = "CancellationMail"

// ErrDispatch marks enqueue failures. The triggering state change has already
// committed by the time the enqueue runs, so callers log it instead of
// failing the request.
var ErrDispatch = errors.New("job queue unavailable")

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Contact is a denormalized name/email pair carried in job payloads so the
// consumer never has to re-query mutable state.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AppointmentSnapshot is the canceled appointment as it was at cancellation
// time, with the provider and user fields the mail needs.
type AppointmentSnapshot struct {
	ID       uuid.UUID `json:"id"`
	Date     time.Time `json:"date"`
	Provider Contact   `json:"provider"`
	User     Contact   `json:"user"`
}

type envelope struct {
	ID          string               `json:"id"`
	Key         string               `json:"key"`
	Appointment *AppointmentSnapshot `json:"appointment,omitempty"`
}
