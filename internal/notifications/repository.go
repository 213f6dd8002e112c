package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines notification persistence.
type Repository interface {
	// Create stores a new notification, assigning ID and CreatedAt.
	Create(ctx context.Context, n *Notification) error
	// ListByRecipient returns the recipient's latest notifications, newest
	// first, capped at limit.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error)
	// MarkRead flags a notification as read and returns the updated record.
	MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error)
}

// InMemoryRepository backs tests and database-less development mode.
type InMemoryRepository struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*Notification
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{notifications: make(map[uuid.UUID]*Notification)}
}

func (r *InMemoryRepository) Create(ctx context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	copied := *n
	r.notifications[n.ID] = &copied
	return nil
}

func (r *InMemoryRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*Notification, 0)
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			copied := *n
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *InMemoryRepository) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	n.Read = true
	copied := *n
	return &copied, nil
}

var _ Repository = (*InMemoryRepository)(nil)
