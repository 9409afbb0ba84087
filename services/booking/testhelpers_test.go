package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teesheet/models"
)

var testDay = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func testGridParams() models.GridParams {
	return models.GridParams{OpenHour: 6, CloseHour: 20, IntervalMinutes: 60, Capacity: 4}
}

func teeAt(hour int) time.Time {
	return testDay.Add(time.Duration(hour) * time.Hour)
}

func newTestGrid(t *testing.T) *TimeSlotGrid {
	t.Helper()
	grid, err := NewTimeSlotGrid(testDay, testGridParams())
	require.NoError(t, err)
	return grid
}

func testBooking(id, player string, tee time.Time) models.Booking {
	return models.Booking{
		ID:         id,
		PlayerName: player,
		TeeTime:    tee,
		Status:     models.StatusConfirmed,
		Fee:        50,
		CreatedAt:  testDay,
		UpdatedAt:  testDay,
	}
}

// fakeBookingBackend is a function-field stand-in for the remote booking
// service. Unset fields echo the request back, the way a healthy server
// that accepts everything would.
type fakeBookingBackend struct {
	mu sync.Mutex

	fetchFn  func(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error)
	createFn func(ctx context.Context, tenantID string, b models.Booking) (models.Booking, error)
	updateFn func(ctx context.Context, tenantID string, b models.Booking) (models.Booking, error)

	createCalls int
	updateCalls int
}

func (f *fakeBookingBackend) FetchBookings(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, tenantID, from, to)
	}
	return nil, nil
}

func (f *fakeBookingBackend) CreateBooking(ctx context.Context, tenantID string, b models.Booking) (models.Booking, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ctx, tenantID, b)
	}
	return b, nil
}

func (f *fakeBookingBackend) UpdateBooking(ctx context.Context, tenantID string, b models.Booking) (models.Booking, error) {
	f.mu.Lock()
	f.updateCalls++
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(ctx, tenantID, b)
	}
	return b, nil
}

type fakeAnalyticsBackend struct {
	mu      sync.Mutex
	statsFn func(ctx context.Context, tenantID string, date time.Time) (models.DailyStats, error)
	calls   int
}

func (f *fakeAnalyticsBackend) FetchDailyStats(ctx context.Context, tenantID string, date time.Time) (models.DailyStats, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.statsFn != nil {
		return f.statsFn(ctx, tenantID, date)
	}
	return models.DailyStats{BookingCount: 12, UtilizationRate: 0.25, Revenue: 600}, nil
}

func newTestService(t *testing.T, backend *fakeBookingBackend, analytics *fakeAnalyticsBackend) *DefaultBookingService {
	t.Helper()
	if backend == nil {
		backend = &fakeBookingBackend{}
	}
	if analytics == nil {
		analytics = &fakeAnalyticsBackend{}
	}
	svc := NewBookingService(backend, analytics, FacadeConfig{
		Grid:              testGridParams(),
		ReconcileInterval: time.Hour, // background ticks stay out of the way
		Location:          time.UTC,
	})
	t.Cleanup(svc.Close)
	return svc
}

func loadTestDay(t *testing.T, svc *DefaultBookingService) DaySnapshot {
	t.Helper()
	snap, err := svc.LoadDay(context.Background(), "tenant-1", testDay)
	require.NoError(t, err)
	return snap
}
