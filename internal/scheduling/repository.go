package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines appointment persistence. Implementations must enforce
// the "one active appointment per provider and hour" invariant on Insert;
// the service-level pre-check is only an early exit for the common case.
type Repository interface {
	// FindActiveByProviderAndDate returns the active appointment occupying the
	// exact hour, or nil when the slot is free.
	FindActiveByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) (*Appointment, error)
	// FindActiveInRange returns active appointments for the provider with
	// date within [from, to], ordered by date.
	FindActiveInRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	// ListActiveByUser returns a page of the user's active appointments
	// ordered by date ascending.
	ListActiveByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, error)
	// GetByID returns the appointment or ErrAppointmentNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Insert persists a new appointment, assigning ID and CreatedAt. Returns
	// ErrSlotTaken when the provider's hour is already booked.
	Insert(ctx context.Context, a *Appointment) error
	// Save persists a mutated CanceledAt.
	Save(ctx context.Context, a *Appointment) error
}

// InMemoryRepository keeps appointments in a map. Used by tests and
// database-less development mode; mirrors the Postgres uniqueness guard.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*Appointment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appointments: make(map[uuid.UUID]*Appointment)}
}

func (r *InMemoryRepository) FindActiveByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lockedFindActive(providerID, date), nil
}

func (r *InMemoryRepository) lockedFindActive(providerID uuid.UUID, date time.Time) *Appointment {
	for _, a := range r.appointments {
		if a.ProviderID == providerID && a.CanceledAt == nil && a.Date.Equal(date) {
			copied := *a
			return &copied
		}
	}
	return nil
}

func (r *InMemoryRepository) FindActiveInRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*Appointment, 0)
	for _, a := range r.appointments {
		if a.ProviderID != providerID || a.CanceledAt != nil {
			continue
		}
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		copied := *a
		matches = append(matches, &copied)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return matches, nil
}

func (r *InMemoryRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*Appointment, 0)
	for _, a := range r.appointments {
		if a.UserID == userID && a.CanceledAt == nil {
			copied := *a
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })

	if offset >= len(matches) {
		return []*Appointment{}, nil
	}
	matches = matches[offset:]
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *InMemoryRepository) Insert(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Authoritative double-booking guard, equivalent to the partial unique
	// index in Postgres.
	if existing := r.lockedFindActive(a.ProviderID, a.Date); existing != nil {
		return ErrSlotTaken
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	copied := *a
	r.appointments[a.ID] = &copied
	return nil
}

func (r *InMemoryRepository) Save(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	copied := *a
	r.appointments[a.ID] = &copied
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
