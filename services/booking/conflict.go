package booking

import (
	"teesheet/models"
)

// MoveAssessment is the outcome of a conflict check. AtCapacity is a
// normal outcome requiring caller confirmation, not an error.
type MoveAssessment struct {
	Fits         bool
	CurrentCount int
	Capacity     int
}

// ConflictDetector decides whether a proposed placement fits its target
// slot, given the current state of the store.
type ConflictDetector struct {
	store *BookingStore
	grid  *TimeSlotGrid
}

func NewConflictDetector(store *BookingStore, grid *TimeSlotGrid) *ConflictDetector {
	return &ConflictDetector{store: store, grid: grid}
}

// CheckMove assesses moving b onto targetSlot. A booking moving within
// its own current slot never counts itself as a competing seat. A slot
// holding exactly capacity active bookings is full.
func (d *ConflictDetector) CheckMove(b models.Booking, targetSlot models.TimeSlot) MoveAssessment {
	targetTee := d.grid.TimeOf(targetSlot)
	key := models.SlotKey{TeeUnix: targetTee.Unix(), CourseRef: b.CourseRef}

	count := d.store.ActiveCount(key)
	if b.Status.Active() && b.SlotKey() == key && count > 0 {
		count-- // self-exclusion
	}

	return MoveAssessment{
		Fits:         count < targetSlot.Capacity,
		CurrentCount: count,
		Capacity:     targetSlot.Capacity,
	}
}

// CheckCreate assesses placing a brand-new booking into targetSlot.
func (d *ConflictDetector) CheckCreate(courseRef string, targetSlot models.TimeSlot) MoveAssessment {
	targetTee := d.grid.TimeOf(targetSlot)
	key := models.SlotKey{TeeUnix: targetTee.Unix(), CourseRef: courseRef}
	count := d.store.ActiveCount(key)
	return MoveAssessment{
		Fits:         count < targetSlot.Capacity,
		CurrentCount: count,
		Capacity:     targetSlot.Capacity,
	}
}
