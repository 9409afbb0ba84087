package booking

import (
	"fmt"
	"time"

	"teesheet/models"
)

// TimeSlotGrid is the immutable daily grid of bookable slots. It is
// regenerated whenever the active date changes and never mutated.
type TimeSlotGrid struct {
	midnight time.Time
	params   models.GridParams
	slots    []models.TimeSlot
}

// NewTimeSlotGrid generates the ordered slot sequence covering
// [OpenHour, CloseHour) of the given date in fixed intervals.
func NewTimeSlotGrid(date time.Time, params models.GridParams) (*TimeSlotGrid, error) {
	if params.OpenHour < 0 || params.CloseHour > 24 || params.OpenHour >= params.CloseHour {
		return nil, fmt.Errorf("invalid operating hours [%d, %d)", params.OpenHour, params.CloseHour)
	}
	if params.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("invalid slot interval %d", params.IntervalMinutes)
	}
	if params.Capacity <= 0 {
		return nil, fmt.Errorf("invalid slot capacity %d", params.Capacity)
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dateStr := midnight.Format("2006-01-02")

	var slots []models.TimeSlot
	for m := params.OpenHour * 60; m < params.CloseHour*60; m += params.IntervalMinutes {
		slots = append(slots, models.TimeSlot{
			Date:     dateStr,
			Start:    m,
			Capacity: params.Capacity,
		})
	}

	return &TimeSlotGrid{midnight: midnight, params: params, slots: slots}, nil
}

// Date returns midnight of the grid's operating day.
func (g *TimeSlotGrid) Date() time.Time {
	return g.midnight
}

// Slots returns the ordered slot sequence as a copy.
func (g *TimeSlotGrid) Slots() []models.TimeSlot {
	out := make([]models.TimeSlot, len(g.slots))
	copy(out, g.slots)
	return out
}

// SlotCount returns the number of slots on the grid.
func (g *TimeSlotGrid) SlotCount() int {
	return len(g.slots)
}

// SeatCapacity returns the per-slot seat capacity.
func (g *TimeSlotGrid) SeatCapacity() int {
	return g.params.Capacity
}

// TotalSeats returns the seat capacity of the whole day.
func (g *TimeSlotGrid) TotalSeats() int {
	return len(g.slots) * g.params.Capacity
}

// TimeOf materializes the slot's tee time on the grid's day.
func (g *TimeSlotGrid) TimeOf(slot models.TimeSlot) time.Time {
	return g.midnight.Add(time.Duration(slot.Start) * time.Minute)
}

// SlotFor returns the slot whose boundary matches teeTime exactly.
// Times outside operating hours or off an interval boundary return
// ErrNoMatchingSlot; callers that want rounding use NearestSlot.
func (g *TimeSlotGrid) SlotFor(teeTime time.Time) (models.TimeSlot, error) {
	minutes, ok := g.minutesOf(teeTime)
	if !ok {
		return models.TimeSlot{}, ErrNoMatchingSlot
	}
	// Boundaries are measured from opening, not midnight, so intervals
	// that do not divide the opening minute still line up.
	offset := minutes - g.params.OpenHour*60
	if offset%g.params.IntervalMinutes != 0 {
		return models.TimeSlot{}, ErrNoMatchingSlot
	}
	return g.slots[offset/g.params.IntervalMinutes], nil
}

// NearestSlot rounds teeTime down to the enclosing slot boundary.
func (g *TimeSlotGrid) NearestSlot(teeTime time.Time) (models.TimeSlot, error) {
	minutes, ok := g.rawMinutesOf(teeTime)
	if !ok {
		return models.TimeSlot{}, ErrNoMatchingSlot
	}
	idx := (minutes - g.params.OpenHour*60) / g.params.IntervalMinutes
	return g.slots[idx], nil
}

// minutesOf converts teeTime to minutes-from-midnight, rejecting times
// that carry sub-minute precision.
func (g *TimeSlotGrid) minutesOf(teeTime time.Time) (int, bool) {
	local := teeTime.In(g.midnight.Location())
	if local.Second() != 0 || local.Nanosecond() != 0 {
		return 0, false
	}
	return g.rawMinutesOf(teeTime)
}

// rawMinutesOf checks the day and the operating window, truncating any
// sub-minute precision.
func (g *TimeSlotGrid) rawMinutesOf(teeTime time.Time) (int, bool) {
	local := teeTime.In(g.midnight.Location())
	if local.Year() != g.midnight.Year() || local.YearDay() != g.midnight.YearDay() {
		return 0, false
	}
	minutes := local.Hour()*60 + local.Minute()
	if minutes < g.params.OpenHour*60 || minutes >= g.params.CloseHour*60 {
		return 0, false
	}
	return minutes, true
}
