package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teesheet/models"
)

func TestTimeSlotGrid_GeneratesDeterministicSequence(t *testing.T) {
	params := models.GridParams{OpenHour: 7, CloseHour: 19, IntervalMinutes: 15, Capacity: 4}

	first, err := NewTimeSlotGrid(testDay, params)
	require.NoError(t, err)
	second, err := NewTimeSlotGrid(testDay, params)
	require.NoError(t, err)

	assert.Equal(t, first.Slots(), second.Slots())
	assert.Equal(t, 12*4, first.SlotCount()) // 12 hours, 4 slots per hour
	assert.Equal(t, 12*4*4, first.TotalSeats())

	slots := first.Slots()
	assert.Equal(t, 7*60, slots[0].Start)
	assert.Equal(t, 19*60-15, slots[len(slots)-1].Start)
	for i, slot := range slots {
		assert.Equal(t, "2025-03-01", slot.Date)
		assert.Equal(t, 4, slot.Capacity)
		if i > 0 {
			assert.Equal(t, 15, slot.Start-slots[i-1].Start)
		}
	}
}

func TestTimeSlotGrid_RejectsInvalidParams(t *testing.T) {
	_, err := NewTimeSlotGrid(testDay, models.GridParams{OpenHour: 10, CloseHour: 8, IntervalMinutes: 15, Capacity: 4})
	assert.Error(t, err)

	_, err = NewTimeSlotGrid(testDay, models.GridParams{OpenHour: 6, CloseHour: 20, IntervalMinutes: 0, Capacity: 4})
	assert.Error(t, err)

	_, err = NewTimeSlotGrid(testDay, models.GridParams{OpenHour: 6, CloseHour: 20, IntervalMinutes: 15, Capacity: 0})
	assert.Error(t, err)
}

func TestTimeSlotGrid_SlotFor(t *testing.T) {
	grid := newTestGrid(t)

	slot, err := grid.SlotFor(teeAt(9))
	require.NoError(t, err)
	assert.Equal(t, 9*60, slot.Start)
	assert.Equal(t, teeAt(9), grid.TimeOf(slot))

	// Off an interval boundary.
	_, err = grid.SlotFor(testDay.Add(9*time.Hour + 20*time.Minute))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)

	// Outside operating hours.
	_, err = grid.SlotFor(teeAt(5))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)
	_, err = grid.SlotFor(teeAt(20))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)

	// Wrong day.
	_, err = grid.SlotFor(teeAt(9).AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)

	// Sub-minute precision never matches a boundary.
	_, err = grid.SlotFor(teeAt(9).Add(30 * time.Second))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)
}

func TestTimeSlotGrid_BoundariesMeasureFromOpening(t *testing.T) {
	// 25-minute intervals from 06:00 put boundaries on minutes that are
	// not multiples of the interval from midnight (06:25 is minute 385).
	params := models.GridParams{OpenHour: 6, CloseHour: 8, IntervalMinutes: 25, Capacity: 4}
	grid, err := NewTimeSlotGrid(testDay, params)
	require.NoError(t, err)

	slot, err := grid.SlotFor(testDay.Add(6*time.Hour + 25*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 6*60+25, slot.Start)

	_, err = grid.SlotFor(testDay.Add(6*time.Hour + 30*time.Minute))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)

	near, err := grid.NearestSlot(testDay.Add(6*time.Hour + 49*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 6*60+25, near.Start)
}

func TestTimeSlotGrid_NearestSlotRoundsDown(t *testing.T) {
	grid := newTestGrid(t)

	slot, err := grid.NearestSlot(testDay.Add(9*time.Hour + 40*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 9*60, slot.Start)

	_, err = grid.NearestSlot(teeAt(4))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)
}

func TestTimeSlot_TimeMaterializesInLocation(t *testing.T) {
	slot := models.TimeSlot{Date: "2025-03-01", Start: 9 * 60, Capacity: 4}
	assert.Equal(t, teeAt(9), slot.Time(time.UTC))
}
