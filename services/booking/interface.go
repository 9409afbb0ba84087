package booking

import (
	"context"
	"time"

	"teesheet/models"
)

// BookingBackend is the remote source of truth for booking records. The
// transport behind it is an injected collaborator; the core only relies
// on this request/response contract. The server may rewrite ids and other
// fields on create/update; seat indexes are assigned client-side and any
// value the server returns for them is ignored.
type BookingBackend interface {
	FetchBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error)
	CreateBooking(ctx context.Context, tenantID string, b models.Booking) (models.Booking, error)
	UpdateBooking(ctx context.Context, tenantID string, b models.Booking) (models.Booking, error)
}

// AnalyticsBackend serves authoritative daily aggregates.
type AnalyticsBackend interface {
	FetchDailyStats(ctx context.Context, tenantID string, date time.Time) (models.DailyStats, error)
}

// ChangeKind labels what a change notification is about.
type ChangeKind string

const (
	ChangeDayLoaded      ChangeKind = "day_loaded"
	ChangeApplied        ChangeKind = "applied"     // optimistic local apply
	ChangeConfirmed      ChangeKind = "confirmed"   // server accepted
	ChangeRolledBack     ChangeKind = "rolled_back" // server rejected, pre-image restored
	ChangeBulkSettled    ChangeKind = "bulk_settled"
	ChangeStatsRefreshed ChangeKind = "stats_refreshed"
	ChangeFilterChanged  ChangeKind = "filter_changed"
)

// ChangeEvent is pushed to subscribed listeners; consumers re-read the
// visible list and stats on receipt.
type ChangeEvent struct {
	Kind      ChangeKind
	BookingID string // set for per-booking changes
}

// DaySnapshot is what LoadDay hands back once a date context is ready.
type DaySnapshot struct {
	Slots    []models.TimeSlot
	Bookings []models.Booking
	Stats    models.DailyStats
}

// BulkResult reports the outcome for one booking of a bulk update. A
// partial failure never rolls back successfully-updated siblings.
type BulkResult struct {
	BookingID string
	Booking   models.Booking
	Err       error
}

// BookingService is the only surface the UI collaborator calls.
type BookingService interface {
	// LoadDay resets the grid and store for a new date, runs one
	// immediate stats reconciliation, and starts the background loop.
	// A remote failure here is user-visible, unlike background ticks.
	LoadDay(ctx context.Context, tenantID string, date time.Time) (DaySnapshot, error)

	CreateBooking(ctx context.Context, input models.CreateBookingInput) (models.Booking, error)

	// MoveBooking is the one-shot move: it proposes, and either applies
	// (no conflict), applies with override, or returns the conflict.
	MoveBooking(ctx context.Context, bookingID string, targetTee time.Time, override bool) (models.Booking, error)

	// ProposeMove / ConfirmMove / CancelMove expose the two-phase
	// drag-and-drop protocol with a blocking override decision.
	ProposeMove(ctx context.Context, bookingID string, targetTee time.Time) (*MoveDecision, error)
	ConfirmMove(ctx context.Context, d *MoveDecision, override bool) (models.Booking, error)
	CancelMove(d *MoveDecision) error

	BulkUpdateStatus(ctx context.Context, bookingIDs []string, status models.BookingStatus) ([]BulkResult, error)
	RemoveBooking(ctx context.Context, bookingID string) error

	SetFilter(spec models.FilterSpec)
	VisibleBookings() []models.Booking
	Slots() []models.TimeSlot
	BookingsForSlot(slot models.TimeSlot, courseRef string) []models.Booking
	Stats() models.DailyStats

	Subscribe(fn func(ChangeEvent)) (unsubscribe func())
	Close()
}
