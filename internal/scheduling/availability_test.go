package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourdesk/appointments-api/internal/clock"
)

func TestDayAvailabilityGridShape(t *testing.T) {
	repo := NewInMemoryRepository()
	calc := NewAvailabilityCalculator(repo, clock.Fixed(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))

	slots, err := calc.DayAvailability(context.Background(), uuid.New(),
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for i, slot := range slots {
		hour := 8 + i
		assert.Equal(t, fmt.Sprintf("%02d:00", hour), slot.Time)
		assert.Equal(t, fmt.Sprintf("2023-01-01T%02d:00:00+00:00", hour), slot.Value)
	}
}

func TestDayAvailabilityMarksPastAndBooked(t *testing.T) {
	now := time.Date(2023, 1, 1, 11, 25, 0, 0, time.UTC)
	providerID := uuid.New()
	repo := NewInMemoryRepository()
	ctx := context.Background()

	booked := &Appointment{UserID: uuid.New(), ProviderID: providerID,
		Date: time.Date(2023, 1, 1, 14, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Insert(ctx, booked))

	calc := NewAvailabilityCalculator(repo, clock.Fixed(now))
	slots, err := calc.DayAvailability(ctx, providerID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots, 16)

	byTime := make(map[string]Slot, len(slots))
	for _, s := range slots {
		byTime[s.Time] = s
	}

	// 08:00 through 11:00 are not after 11:25.
	for _, label := range []string{"08:00", "09:00", "10:00", "11:00"} {
		assert.False(t, byTime[label].Available, label)
	}
	assert.True(t, byTime["12:00"].Available)
	assert.True(t, byTime["13:00"].Available)
	assert.False(t, byTime["14:00"].Available, "booked slot")
	for _, label := range []string{"15:00", "23:00"} {
		assert.True(t, byTime[label].Available, label)
	}
}

func TestDayAvailabilityIgnoresCanceledAndOtherProviders(t *testing.T) {
	now := time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC)
	providerID := uuid.New()
	repo := NewInMemoryRepository()
	ctx := context.Background()

	canceledAt := now
	canceled := &Appointment{UserID: uuid.New(), ProviderID: providerID,
		Date: time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC), CanceledAt: &canceledAt}
	require.NoError(t, repo.Insert(ctx, canceled))

	other := &Appointment{UserID: uuid.New(), ProviderID: uuid.New(),
		Date: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Insert(ctx, other))

	calc := NewAvailabilityCalculator(repo, clock.Fixed(now))
	slots, err := calc.DayAvailability(ctx, providerID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, s := range slots {
		assert.True(t, s.Available, s.Time)
	}
}

func TestDayAvailabilityIgnoresTimeOfDayInput(t *testing.T) {
	now := time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC)
	repo := NewInMemoryRepository()
	calc := NewAvailabilityCalculator(repo, clock.Fixed(now))

	// Asking with an afternoon timestamp yields the same grid as midnight.
	slots, err := calc.DayAvailability(context.Background(), uuid.New(),
		time.Date(2023, 1, 1, 17, 45, 12, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.Equal(t, "2023-01-01T08:00:00+00:00", slots[0].Value)
}
