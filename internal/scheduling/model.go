package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/hourdesk/appointments-api/internal/users"
)

// CancellationWindow is how far ahead of the appointment a cancellation must
// happen. At exactly the boundary the cancellation is already forbidden.
const CancellationWindow = 2 * time.Hour

// PageSize is the fixed page length for appointment listings.
const PageSize = 20

// Appointment is one booked hour between a user and a provider. Date is
// always hour-aligned; CanceledAt is set at most once and never cleared.
type Appointment struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ProviderID uuid.UUID  `json:"provider_id"`
	Date       time.Time  `json:"date"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Past reports whether the appointment's hour is strictly behind now.
func (a *Appointment) Past(now time.Time) bool {
	return a.Date.Before(now)
}

// Cancelable reports whether the owner may still cancel: not canceled yet and
// more than CancellationWindow remaining before the appointment.
func (a *Appointment) Cancelable(now time.Time) bool {
	return a.CanceledAt == nil && now.Before(a.Date.Add(-CancellationWindow))
}

// Slot is one position of the daily availability grid.
type Slot struct {
	Time      string `json:"time"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
}

// ProviderView is the provider summary embedded in listing responses.
type ProviderView struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Avatar *users.Avatar `json:"avatar,omitempty"`
}

// AppointmentView is the listing shape returned to clients. Past and
// Cancelable are derived at read time, never persisted.
type AppointmentView struct {
	ID         uuid.UUID     `json:"id"`
	Date       time.Time     `json:"date"`
	Past       bool          `json:"past"`
	Cancelable bool          `json:"cancelable"`
	Provider   *ProviderView `json:"provider"`
}
