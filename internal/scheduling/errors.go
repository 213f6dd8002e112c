package scheduling

import "errors"

var (
	// ErrInvalidDate is returned when a date parameter is missing or unparseable.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidProvider is returned when the target user does not exist or is
	// not flagged as a provider.
	ErrInvalidProvider = errors.New("appointments can only be created with providers")

	// ErrPastDate is returned when the requested hour is not in the future.
	ErrPastDate = errors.New("past dates are not permitted")

	// ErrSlotTaken is returned when the provider already has an active
	// appointment at the requested hour.
	ErrSlotTaken = errors.New("appointment date is not available")

	// ErrNotOwner is returned when someone other than the booking user tries
	// to cancel.
	ErrNotOwner = errors.New("only the appointment owner can cancel it")

	// ErrCancelWindowClosed is returned when fewer than two hours remain
	// before the appointment.
	ErrCancelWindowClosed = errors.New("appointments can only be canceled two hours in advance")

	// ErrAppointmentNotFound is returned when an appointment id does not resolve.
	ErrAppointmentNotFound = errors.New("appointment not found")
)
