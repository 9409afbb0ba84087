package models

import "time"

// BookingStatus tracks where a booking sits in its day-of-play lifecycle.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCheckedIn BookingStatus = "CheckedIn"
	StatusOnCourse  BookingStatus = "OnCourse"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
	StatusNoShow    BookingStatus = "NoShow"
)

var AllStatuses = []BookingStatus{
	StatusConfirmed, StatusCheckedIn, StatusOnCourse,
	StatusCompleted, StatusCancelled, StatusNoShow,
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Active reports whether the booking still occupies a seat in its slot.
// Cancelled bookings keep their record for audit but release the seat.
func (s BookingStatus) Active() bool {
	return s != StatusCancelled
}

// Booking represents a tee-time reservation record.
type Booking struct {
	ID         string        `json:"id"`                   // Unique booking identifier (e.g., UUID; server may rewrite)
	PlayerName string        `json:"player_name"`          // Lead player for the party
	TeeTime    time.Time     `json:"tee_time"`             // Must align to a slot boundary
	Status     BookingStatus `json:"status"`               // e.g., "Confirmed", "CheckedIn"
	CourseRef  string        `json:"course_ref,omitempty"` // Optional course the slot belongs to
	Notes      string        `json:"notes,omitempty"`
	Fee        float64       `json:"fee,omitempty"` // Green fee, non-negative
	SlotIndex  int           `json:"slot_index"`    // 0-based seat within the slot
	CreatedAt  time.Time     `json:"created_at"`    // Timestamp when booking was created
	UpdatedAt  time.Time     `json:"updated_at"`    // Timestamp of last mutation
}

// SlotKey returns the capacity-accounting key for the booking. At most
// capacity active bookings may share one key.
func (b Booking) SlotKey() SlotKey {
	return SlotKey{TeeUnix: b.TeeTime.Unix(), CourseRef: b.CourseRef}
}

// CreateBookingInput carries the caller-supplied fields for a new booking.
type CreateBookingInput struct {
	PlayerName string    `json:"player_name"`
	TeeTime    time.Time `json:"tee_time"`
	CourseRef  string    `json:"course_ref,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Fee        float64   `json:"fee,omitempty"`
}
