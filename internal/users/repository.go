package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Repository defines read access to users.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListProviders(ctx context.Context) ([]*User, error)
}

// InMemoryRepository backs tests and database-less development mode.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[uuid.UUID]*User)}
}

// Put registers a user. Seeding helper for tests and dev mode.
func (r *InMemoryRepository) Put(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.users[u.ID] = &copied
}

// GetByID retrieves a user by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// ListProviders returns every user flagged as a provider.
func (r *InMemoryRepository) ListProviders(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]*User, 0)
	for _, u := range r.users {
		if u.Provider {
			copied := *u
			providers = append(providers, &copied)
		}
	}
	return providers, nil
}

var _ Repository = (*InMemoryRepository)(nil)
