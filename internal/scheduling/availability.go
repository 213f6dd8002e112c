package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hourdesk/appointments-api/internal/clock"
)

// The bookable grid is every whole hour from 08:00 through 23:00. The grid is
// generated rather than listed so the bounds live in one place.
const (
	slotFirstHour = 8
	slotLastHour  = 23
)

// slotValueLayout keeps the numeric zone offset even for UTC.
const slotValueLayout = "2006-01-02T15:04:05-07:00"

// AvailabilityCalculator reports, for a provider and a calendar day, which
// grid slots are still bookable. Read-only; the booking path is what actually
// prevents collisions.
type AvailabilityCalculator struct {
	repo  Repository
	clock clock.Clock
}

// NewAvailabilityCalculator constructs a calculator.
func NewAvailabilityCalculator(repo Repository, clk clock.Clock) *AvailabilityCalculator {
	if repo == nil {
		panic("scheduling: repository required")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &AvailabilityCalculator{repo: repo, clock: clk}
}

// DayAvailability returns the full grid in order. A slot is available iff it
// is strictly in the future and no active appointment sits on its exact hour.
// Any time-of-day component of day is ignored.
func (c *AvailabilityCalculator) DayAvailability(ctx context.Context, providerID uuid.UUID, day time.Time) ([]Slot, error) {
	now := c.clock.Now()

	appointments, err := c.repo.FindActiveInRange(ctx, providerID, clock.StartOfDay(day), clock.EndOfDay(day))
	if err != nil {
		return nil, err
	}

	booked := make(map[int64]struct{}, len(appointments))
	for _, a := range appointments {
		booked[a.Date.Unix()] = struct{}{}
	}

	slots := make([]Slot, 0, slotLastHour-slotFirstHour+1)
	for hour := slotFirstHour; hour <= slotLastHour; hour++ {
		value := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
		_, taken := booked[value.Unix()]
		slots = append(slots, Slot{
			Time:      fmt.Sprintf("%02d:00", hour),
			Value:     value.Format(slotValueLayout),
			Available: value.After(now) && !taken,
		})
	}
	return slots, nil
}
