package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teesheet/config"
	"teesheet/models"
	"teesheet/utils"
)

// bulkWorkers bounds the fan-out of a bulk status update.
const bulkWorkers = 4

// FacadeConfig carries the per-facade knobs so tests can construct
// services without touching the global AppConfig.
type FacadeConfig struct {
	Grid              models.GridParams
	ReconcileInterval time.Duration
	MaxOverrideExtra  int
	Location          *time.Location
}

// FacadeConfigFromApp derives a FacadeConfig from the loaded AppConfig.
func FacadeConfigFromApp() FacadeConfig {
	return FacadeConfig{
		Grid: models.GridParams{
			OpenHour:        config.AppConfig.OpenHour,
			CloseHour:       config.AppConfig.CloseHour,
			IntervalMinutes: config.AppConfig.SlotIntervalMinutes,
			Capacity:        config.AppConfig.SlotCapacity,
		},
		ReconcileInterval: config.AppConfig.ReconcileInterval,
		MaxOverrideExtra:  config.AppConfig.MaxOverrideExtra,
		Location:          time.Local,
	}
}

// DefaultBookingService orchestrates the grid, store, conflict detector,
// optimistic mutator, and reconciliation loop behind the single surface
// the UI collaborator calls. All writes for the active date funnel
// through here.
type DefaultBookingService struct {
	backend   BookingBackend
	analytics AnalyticsBackend
	cfg       FacadeConfig

	mu       sync.Mutex // guards the date context fields and the pending move
	loaded   bool
	tenantID string
	grid     *TimeSlotGrid
	store    *BookingStore
	detector *ConflictDetector
	mutator  *OptimisticMutator
	recon    *ReconciliationLoop
	pending  *MoveDecision

	filterMu sync.RWMutex
	filter   models.FilterSpec

	statsMu sync.RWMutex
	stats   models.DailyStats

	listenerMu   sync.RWMutex
	listeners    map[int]func(ChangeEvent)
	nextListener int
}

var _ BookingService = (*DefaultBookingService)(nil)

func NewBookingService(backend BookingBackend, analytics AnalyticsBackend, cfg FacadeConfig) *DefaultBookingService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &DefaultBookingService{
		backend:   backend,
		analytics: analytics,
		cfg:       cfg,
		listeners: make(map[int]func(ChangeEvent)),
	}
}

// LoadDay resets the slot grid and booking store for the new date, pulls
// the authoritative bookings and stats once, and starts the background
// reconciliation loop. A remote failure here is user-visible, unlike
// background ticks.
func (s *DefaultBookingService) LoadDay(ctx context.Context, tenantID string, date time.Time) (DaySnapshot, error) {
	if s.backend == nil || s.analytics == nil {
		return DaySnapshot{}, fmt.Errorf("%w: backend not configured", ErrServiceUnavailable)
	}

	grid, err := NewTimeSlotGrid(date.In(s.cfg.Location), s.cfg.Grid)
	if err != nil {
		return DaySnapshot{}, err
	}

	dayStart := grid.Date()
	dayEnd := dayStart.AddDate(0, 0, 1)
	bookings, err := s.backend.FetchBookings(ctx, tenantID, dayStart, dayEnd)
	if err != nil {
		return DaySnapshot{}, fmt.Errorf("%w: fetch bookings: %v", ErrServiceUnavailable, err)
	}

	store := NewBookingStore(s.cfg.MaxOverrideExtra)
	store.Reset(bookings)

	recon := NewReconciliationLoop(s.analytics, tenantID, dayStart, s.publishStats)

	s.mu.Lock()
	if s.recon != nil {
		s.recon.Stop()
	}
	s.tenantID = tenantID
	s.grid = grid
	s.store = store
	s.detector = NewConflictDetector(store, grid)
	s.mutator = NewOptimisticMutator(store)
	s.recon = recon
	s.pending = nil
	s.loaded = true
	s.mu.Unlock()

	// The initial tick must succeed before the day counts as loaded;
	// later ticks fail silently.
	if err := recon.TickNow(ctx); err != nil {
		s.mu.Lock()
		s.loaded = false
		s.recon = nil
		s.mu.Unlock()
		return DaySnapshot{}, fmt.Errorf("%w: fetch daily stats: %v", ErrServiceUnavailable, err)
	}
	if err := recon.Start(s.cfg.ReconcileInterval); err != nil {
		return DaySnapshot{}, err
	}

	utils.GetLogger().Info("day loaded",
		zap.String("tenantID", tenantID),
		zap.String("date", dayStart.Format("2006-01-02")),
		zap.Int("bookings", len(bookings)),
		zap.Int("slots", grid.SlotCount()))

	s.notify(ChangeEvent{Kind: ChangeDayLoaded})
	return DaySnapshot{
		Slots:    grid.Slots(),
		Bookings: store.Snapshot(),
		Stats:    s.Stats(),
	}, nil
}

// CreateBooking validates the input, applies the booking optimistically,
// and awaits remote confirmation. Validation failures never touch the
// store; remote rejections roll the new record back out.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, input models.CreateBookingInput) (models.Booking, error) {
	c, err := s.context()
	if err != nil {
		return models.Booking{}, err
	}

	if strings.TrimSpace(input.PlayerName) == "" {
		return models.Booking{}, NewValidationError("player_name", "must not be empty")
	}
	if input.Fee < 0 {
		return models.Booking{}, NewValidationError("fee", "must not be negative")
	}
	slot, err := c.grid.SlotFor(input.TeeTime)
	if err != nil {
		return models.Booking{}, NewValidationError("tee_time", "must align to a slot boundary within operating hours")
	}

	// Consulted first for an early answer; the store re-checks
	// authoritatively under its own lock.
	if assessment := c.detector.CheckCreate(input.CourseRef, slot); !assessment.Fits {
		return models.Booking{}, &CapacityConflictError{
			CurrentCount: assessment.CurrentCount,
			Capacity:     assessment.Capacity,
		}
	}

	now := time.Now()
	b := models.Booking{
		ID:         uuid.New().String(),
		PlayerName: input.PlayerName,
		TeeTime:    c.grid.TimeOf(slot),
		Status:     models.StatusConfirmed,
		CourseRef:  input.CourseRef,
		Notes:      input.Notes,
		Fee:        input.Fee,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return c.mutator.Execute(ctx, mutationRequest{
		op:       "create",
		preImage: nil,
		apply: func() (models.Booking, error) {
			return c.store.Add(b, slot.Capacity, false)
		},
		remote: func(ctx context.Context, local models.Booking) (models.Booking, error) {
			return s.backend.CreateBooking(ctx, s.tenantID, local)
		},
		onApplied:  s.notifyApplied,
		onResolved: s.notifyResolved,
	})
}

// MoveBooking is the one-shot reschedule: propose, then resolve the
// conflict decision inline using the caller's override flag.
func (s *DefaultBookingService) MoveBooking(ctx context.Context, bookingID string, targetTee time.Time, override bool) (models.Booking, error) {
	d, err := s.ProposeMove(ctx, bookingID, targetTee)
	if err != nil {
		return models.Booking{}, err
	}
	if d.Applied != nil {
		return *d.Applied, nil
	}
	return s.ConfirmMove(ctx, d, override)
}

// BulkUpdateStatus runs one independent optimistic mutation per booking.
// A partial failure rolls back only the affected record, never its
// siblings; listeners are notified once after the whole batch settles.
func (s *DefaultBookingService) BulkUpdateStatus(ctx context.Context, bookingIDs []string, status models.BookingStatus) ([]BulkResult, error) {
	c, err := s.context()
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	results := make([]BulkResult, len(bookingIDs))
	g := new(errgroup.Group)
	g.SetLimit(bulkWorkers)

	for i, id := range bookingIDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.updateOneStatus(ctx, c, id, status)
			return nil
		})
	}
	_ = g.Wait()

	s.refreshLocalStats()
	s.notify(ChangeEvent{Kind: ChangeBulkSettled})
	return results, nil
}

func (s *DefaultBookingService) updateOneStatus(ctx context.Context, c dayContext, id string, status models.BookingStatus) BulkResult {
	pre, ok := c.store.Get(id)
	if !ok {
		return BulkResult{BookingID: id, Err: ErrBookingNotFound}
	}

	updated := pre
	updated.Status = status
	updated.UpdatedAt = time.Now()

	// No per-item notifications: the batch settles once.
	b, err := c.mutator.Execute(ctx, mutationRequest{
		op:       "bulk_status",
		preImage: &pre,
		apply: func() (models.Booking, error) {
			// Replace runs the capacity gate itself when the new
			// status re-activates a cancelled record.
			if err := c.store.Replace(id, updated, c.grid.SeatCapacity()); err != nil {
				return models.Booking{}, err
			}
			return updated, nil
		},
		remote: func(ctx context.Context, local models.Booking) (models.Booking, error) {
			return s.backend.UpdateBooking(ctx, s.tenantID, local)
		},
	})
	return BulkResult{BookingID: id, Booking: b, Err: err}
}

// RemoveBooking hard-deletes a record. Cancelling via status is preferred
// for audit; removal exists for explicit cleanup and follows the same
// optimistic contract (the pre-image is restored if the remote rejects
// the cancellation).
func (s *DefaultBookingService) RemoveBooking(ctx context.Context, bookingID string) error {
	c, err := s.context()
	if err != nil {
		return err
	}

	pre, ok := c.store.Get(bookingID)
	if !ok {
		return ErrBookingNotFound
	}

	cancelled := pre
	cancelled.Status = models.StatusCancelled
	cancelled.UpdatedAt = time.Now()

	committed, err := c.mutator.Execute(ctx, mutationRequest{
		op:       "remove",
		preImage: &pre,
		apply: func() (models.Booking, error) {
			// Cancel in place rather than delete outright, so observers
			// never see the record resurrected between the server
			// acknowledgement and the final delete below.
			if err := c.store.Replace(bookingID, cancelled, c.grid.SeatCapacity()); err != nil {
				return models.Booking{}, err
			}
			return cancelled, nil
		},
		remote: func(ctx context.Context, local models.Booking) (models.Booking, error) {
			return s.backend.UpdateBooking(ctx, s.tenantID, local)
		},
		onApplied: s.notifyApplied,
		onResolved: func(kind ChangeKind, b models.Booking) {
			if kind == ChangeRolledBack {
				s.notifyResolved(kind, b)
			}
			// Confirmation is announced after the delete completes.
		},
	})
	if err != nil {
		return err
	}

	// The server acknowledged the cancellation; drop the committed
	// record - by the id the server settled on, which may differ from
	// the one the caller supplied - to complete the hard delete.
	_ = c.store.Remove(committed.ID)
	s.notifyResolved(ChangeConfirmed, committed)
	return nil
}

// SetFilter installs a new filter spec; the visible list re-derives on
// the next read.
func (s *DefaultBookingService) SetFilter(spec models.FilterSpec) {
	s.filterMu.Lock()
	s.filter = spec
	s.filterMu.Unlock()
	s.notify(ChangeEvent{Kind: ChangeFilterChanged})
}

// VisibleBookings derives the filtered, ordered booking list from the
// live store. It always reads fresh, so rollbacks surface automatically.
func (s *DefaultBookingService) VisibleBookings() []models.Booking {
	s.mu.Lock()
	store, loaded := s.store, s.loaded
	s.mu.Unlock()
	if !loaded {
		return nil
	}

	s.filterMu.RLock()
	spec := s.filter
	s.filterMu.RUnlock()

	return ApplyFilter(store.Snapshot(), spec)
}

// Slots returns the active day's slot grid.
func (s *DefaultBookingService) Slots() []models.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.grid.Slots()
}

// BookingsForSlot returns the slot's occupants ordered by seat.
func (s *DefaultBookingService) BookingsForSlot(slot models.TimeSlot, courseRef string) []models.Booking {
	s.mu.Lock()
	store, grid, loaded := s.store, s.grid, s.loaded
	s.mu.Unlock()
	if !loaded {
		return nil
	}
	key := models.SlotKey{TeeUnix: grid.TimeOf(slot).Unix(), CourseRef: courseRef}
	return store.BookingsForSlot(key)
}

// Stats returns the current daily aggregates.
func (s *DefaultBookingService) Stats() models.DailyStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Listeners re-read VisibleBookings/Stats on receipt.
func (s *DefaultBookingService) Subscribe(fn func(ChangeEvent)) func() {
	s.listenerMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

// Close tears down the date context and stops the reconciliation loop.
func (s *DefaultBookingService) Close() {
	s.mu.Lock()
	if s.recon != nil {
		s.recon.Stop()
		s.recon = nil
	}
	s.loaded = false
	s.pending = nil
	s.mu.Unlock()
}

// dayContext is a consistent view of the active date components.
type dayContext struct {
	grid     *TimeSlotGrid
	store    *BookingStore
	detector *ConflictDetector
	mutator  *OptimisticMutator
}

// context snapshots the active date components, failing before any
// mutation when no day is loaded.
func (s *DefaultBookingService) context() (dayContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return dayContext{}, ErrDayNotLoaded
	}
	return dayContext{grid: s.grid, store: s.store, detector: s.detector, mutator: s.mutator}, nil
}

// publishStats replaces the DailyStats value wholesale.
func (s *DefaultBookingService) publishStats(stats models.DailyStats) {
	s.statsMu.Lock()
	s.stats = stats
	s.statsMu.Unlock()
	s.notify(ChangeEvent{Kind: ChangeStatsRefreshed})
}

// refreshLocalStats installs a best-effort placeholder computed from the
// local store; the next successful remote tick replaces it.
func (s *DefaultBookingService) refreshLocalStats() {
	s.mu.Lock()
	store, grid, loaded := s.store, s.grid, s.loaded
	s.mu.Unlock()
	if !loaded {
		return
	}

	stats := ComputeLocalStats(store.Snapshot(), grid.TotalSeats())
	s.statsMu.Lock()
	s.stats = stats
	s.statsMu.Unlock()
}

func (s *DefaultBookingService) notify(ev ChangeEvent) {
	s.listenerMu.RLock()
	fns := make([]func(ChangeEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *DefaultBookingService) notifyApplied(local models.Booking) {
	s.notify(ChangeEvent{Kind: ChangeApplied, BookingID: local.ID})
}

func (s *DefaultBookingService) notifyResolved(kind ChangeKind, b models.Booking) {
	if kind == ChangeConfirmed {
		s.refreshLocalStats()
	}
	s.notify(ChangeEvent{Kind: kind, BookingID: b.ID})
}
