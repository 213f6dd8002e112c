package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hourdesk/appointments-api/internal/cache"
	"github.com/hourdesk/appointments-api/internal/clock"
	"github.com/hourdesk/appointments-api/internal/users"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

func newCachedFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	resultCache := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 24*time.Hour)

	f := newFixture(t, now)
	f.service = NewService(ServiceConfig{
		Repo:          f.repo,
		Users:         f.users,
		Notifications: f.notifications,
		Dispatcher:    f.dispatcher,
		Cache:         resultCache,
		Clock:         clock.Fixed(now),
		Logger:        logging.New("error"),
	})
	return f
}

func TestListIsMemoized(t *testing.T) {
	now := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCachedFixture(t, now)
	ctx := context.Background()

	_, err := f.service.Book(ctx, f.booker.ID, f.provider.ID, time.Date(2023, 1, 1, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	first, err := f.service.List(ctx, f.booker.ID, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write that bypasses the service leaves the memoized page untouched.
	require.NoError(t, f.repo.Insert(ctx, &Appointment{
		UserID: f.booker.ID, ProviderID: f.provider.ID,
		Date: time.Date(2023, 1, 1, 16, 0, 0, 0, time.UTC),
	}))
	stale, err := f.service.List(ctx, f.booker.ID, 1)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	// Booking through the service invalidates the user's pages.
	_, err = f.service.Book(ctx, f.booker.ID, f.provider.ID, time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	fresh, err := f.service.List(ctx, f.booker.ID, 1)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestAvailabilityMemoizedUntilWrite(t *testing.T) {
	now := time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC)
	f := newCachedFixture(t, now)
	ctx := context.Background()
	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := f.service.Availability(ctx, f.provider.ID, day)
	require.NoError(t, err)
	require.Len(t, first, 16)
	assert.True(t, first[6].Available, "14:00 starts free")

	// Booking 14:00 invalidates the provider's grid for that day.
	_, err = f.service.Book(ctx, f.booker.ID, f.provider.ID, time.Date(2023, 1, 1, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	after, err := f.service.Availability(ctx, f.provider.ID, day)
	require.NoError(t, err)
	assert.False(t, after[6].Available, "14:00 is taken")
}

func TestProvidersMemoized(t *testing.T) {
	now := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCachedFixture(t, now)
	ctx := context.Background()

	first, err := f.service.Providers(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Provider listings tolerate staleness until the TTL expires.
	f.users.Put(&users.User{ID: uuid.New(), Name: "Robson Marques", Provider: true})
	cached, err := f.service.Providers(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}
