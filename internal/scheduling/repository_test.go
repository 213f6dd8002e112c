package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryInsertEnforcesSlotUniqueness(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	providerID := uuid.New()
	date := time.Date(2023, 1, 1, 14, 0, 0, 0, time.UTC)

	first := &Appointment{UserID: uuid.New(), ProviderID: providerID, Date: date}
	require.NoError(t, repo.Insert(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &Appointment{UserID: uuid.New(), ProviderID: providerID, Date: date}
	assert.ErrorIs(t, repo.Insert(ctx, second), ErrSlotTaken)

	// Canceling the first frees the slot.
	canceledAt := time.Now().UTC()
	first.CanceledAt = &canceledAt
	require.NoError(t, repo.Save(ctx, first))
	assert.NoError(t, repo.Insert(ctx, second))
}

func TestInMemoryFindActiveByProviderAndDate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	providerID := uuid.New()
	date := time.Date(2023, 1, 1, 14, 0, 0, 0, time.UTC)

	free, err := repo.FindActiveByProviderAndDate(ctx, providerID, date)
	require.NoError(t, err)
	assert.Nil(t, free)

	a := &Appointment{UserID: uuid.New(), ProviderID: providerID, Date: date}
	require.NoError(t, repo.Insert(ctx, a))

	found, err := repo.FindActiveByProviderAndDate(ctx, providerID, date)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)
}

func TestInMemoryFindActiveInRangeOrdersByDate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	providerID := uuid.New()

	late := &Appointment{UserID: uuid.New(), ProviderID: providerID,
		Date: time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC)}
	early := &Appointment{UserID: uuid.New(), ProviderID: providerID,
		Date: time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)}
	nextDay := &Appointment{UserID: uuid.New(), ProviderID: providerID,
		Date: time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)}
	for _, a := range []*Appointment{late, early, nextDay} {
		require.NoError(t, repo.Insert(ctx, a))
	}

	got, err := repo.FindActiveInRange(ctx, providerID,
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 1, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)
}

func TestInMemoryGetByIDAndSaveMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	err = repo.Save(ctx, &Appointment{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestInMemoryReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a := &Appointment{UserID: uuid.New(), ProviderID: uuid.New(),
		Date: time.Date(2023, 1, 1, 14, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Insert(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	canceledAt := time.Now().UTC()
	got.CanceledAt = &canceledAt

	// Mutating the returned value must not touch the stored record.
	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CanceledAt)
}
