package mentors

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// TimeSlots are the bookable hourly slots of a day.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM",
	"05:00 PM", "06:00 PM", "07:00 PM", "08:00 PM",
}

const (
	availabilityWindowDays = 14
	keepProbability        = 0.7
)

// Availability simulates a mentor calendar: a random subset of the next two
// weeks and a random subset of each day's slots. There is no conflict
// detection.
type Availability struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay time.Duration
}

// NewAvailability builds a simulator. A nil rng uses a time-seeded PCG.
func NewAvailability(rng *rand.Rand, delay time.Duration) *Availability {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Availability{rng: rng, delay: delay}
}

// Dates returns the open days for a mentor among the 14 days after from,
// truncated to midnight in from's location.
func (a *Availability) Dates(ctx context.Context, _ string, from time.Time) ([]time.Time, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	a.mu.Lock()
	defer a.mu.Unlock()
	dates := make([]time.Time, 0, availabilityWindowDays)
	for i := 1; i <= availabilityWindowDays; i++ {
		if a.rng.Float64() < keepProbability {
			dates = append(dates, start.AddDate(0, 0, i))
		}
	}
	return dates, nil
}

// Slots returns the open time slots for a day.
func (a *Availability) Slots(ctx context.Context, _ time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	slots := make([]string, 0, len(TimeSlots))
	for _, slot := range TimeSlots {
		if a.rng.Float64() < keepProbability {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (a *Availability) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsValidSlot reports whether slot is one of the bookable hourly slots.
func IsValidSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
