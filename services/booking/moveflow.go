package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"teesheet/models"
	"teesheet/utils"
)

// moveState tracks one move proposal:
// Proposing -> {Applying | AwaitingOverrideDecision} -> Applying ->
// {Applied | Failed}; cancel from AwaitingOverrideDecision resolves with
// no partial writes. Applied, Failed, and Cancelled are terminal.
type moveState int

const (
	moveProposing moveState = iota
	moveAwaitingDecision
	moveApplying
	moveApplied
	moveFailed
	moveCancelled
)

// MoveDecision is handed back by ProposeMove. When Assessment.Fits is
// false the flow parks here until the caller supplies ConfirmMove with an
// explicit override, or CancelMove - the human-in-the-loop prompt.
type MoveDecision struct {
	BookingID  string
	TargetSlot models.TimeSlot
	TargetTee  time.Time
	Assessment MoveAssessment

	// Applied holds the relocated booking when the move proceeded
	// without needing a decision.
	Applied *models.Booking

	mu    sync.Mutex
	state moveState
}

// Pending reports whether the decision still awaits ConfirmMove/CancelMove.
func (d *MoveDecision) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == moveAwaitingDecision
}

// resolved reports whether the decision reached a terminal state. A
// proposal still being assessed or applied is unresolved and blocks new
// proposals just like a parked decision.
func (d *MoveDecision) resolved() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case moveApplied, moveFailed, moveCancelled:
		return true
	default:
		return false
	}
}

func (d *MoveDecision) setState(state moveState) {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
}

// ProposeMove runs the conflict check for relocating a booking. A fitting
// move applies immediately; a full target slot returns a pending decision
// instead. Only one pending decision may exist at a time - a second
// proposal is rejected with ErrOperationInProgress rather than queued.
func (s *DefaultBookingService) ProposeMove(ctx context.Context, bookingID string, targetTee time.Time) (*MoveDecision, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, ErrDayNotLoaded
	}
	if s.pending != nil && !s.pending.resolved() {
		s.mu.Unlock()
		return nil, ErrOperationInProgress
	}
	// Reserve the single decision slot before releasing the lock, so a
	// concurrent proposal is rejected while this one is still being
	// assessed. The reservation is released on every path that does not
	// park the decision for a human.
	d := &MoveDecision{BookingID: bookingID}
	s.pending = d
	grid, store, detector := s.grid, s.store, s.detector
	s.mu.Unlock()

	b, ok := store.Get(bookingID)
	if !ok {
		d.setState(moveFailed)
		s.clearPending(d)
		return nil, ErrBookingNotFound
	}
	targetSlot, err := grid.SlotFor(targetTee)
	if err != nil {
		d.setState(moveFailed)
		s.clearPending(d)
		return nil, NewValidationError("tee_time", "target time does not match any slot")
	}

	d.TargetSlot = targetSlot
	d.TargetTee = grid.TimeOf(targetSlot)
	d.Assessment = detector.CheckMove(b, targetSlot)

	if d.Assessment.Fits {
		d.setState(moveApplying)
		moved, err := s.applyMove(ctx, d, false)
		if err != nil {
			d.setState(moveFailed)
			s.clearPending(d)
			return nil, err
		}
		d.Applied = &moved
		d.setState(moveApplied)
		s.clearPending(d)
		return d, nil
	}

	utils.GetLogger().Info("move awaiting override decision",
		zap.String("bookingID", bookingID),
		zap.Time("targetTee", d.TargetTee),
		zap.Int("count", d.Assessment.CurrentCount),
		zap.Int("capacity", d.Assessment.Capacity))

	d.setState(moveAwaitingDecision)
	return d, nil
}

// ConfirmMove resolves a pending decision. Without override the conflict
// stands and *CapacityConflictError is returned; with override the move
// proceeds past capacity (up to the configured ceiling).
func (s *DefaultBookingService) ConfirmMove(ctx context.Context, d *MoveDecision, override bool) (models.Booking, error) {
	if d == nil {
		return models.Booking{}, ErrDecisionResolved
	}

	d.mu.Lock()
	if d.state != moveAwaitingDecision {
		d.mu.Unlock()
		return models.Booking{}, ErrDecisionResolved
	}
	d.state = moveApplying
	d.mu.Unlock()

	defer s.clearPending(d)

	if !override {
		d.mu.Lock()
		d.state = moveFailed
		d.mu.Unlock()
		return models.Booking{}, &CapacityConflictError{
			CurrentCount: d.Assessment.CurrentCount,
			Capacity:     d.Assessment.Capacity,
		}
	}

	moved, err := s.applyMove(ctx, d, true)
	d.mu.Lock()
	if err != nil {
		d.state = moveFailed
	} else {
		d.state = moveApplied
		d.Applied = &moved
	}
	d.mu.Unlock()
	return moved, err
}

// CancelMove abandons a pending decision with no side effects. A cancel
// during Applying is rejected until the outcome resolves.
func (s *DefaultBookingService) CancelMove(d *MoveDecision) error {
	if d == nil {
		return ErrDecisionResolved
	}
	d.mu.Lock()
	switch d.state {
	case moveApplying:
		d.mu.Unlock()
		return ErrOperationInProgress
	case moveAwaitingDecision:
		d.state = moveCancelled
		d.mu.Unlock()
		s.clearPending(d)
		return nil
	default:
		d.mu.Unlock()
		return ErrDecisionResolved
	}
}

// applyMove relocates the booking optimistically and awaits remote
// confirmation, rolling back to the captured pre-image on rejection.
func (s *DefaultBookingService) applyMove(ctx context.Context, d *MoveDecision, override bool) (models.Booking, error) {
	pre, ok := s.store.Get(d.BookingID)
	if !ok {
		return models.Booking{}, ErrBookingNotFound
	}

	return s.mutator.Execute(ctx, mutationRequest{
		op:       "move",
		preImage: &pre,
		apply: func() (models.Booking, error) {
			return s.store.Relocate(d.BookingID, d.TargetTee, d.TargetSlot.Capacity, override)
		},
		remote: func(ctx context.Context, local models.Booking) (models.Booking, error) {
			return s.backend.UpdateBooking(ctx, s.tenantID, local)
		},
		onApplied:  s.notifyApplied,
		onResolved: s.notifyResolved,
	})
}

func (s *DefaultBookingService) clearPending(d *MoveDecision) {
	s.mu.Lock()
	if s.pending == d {
		s.pending = nil
	}
	s.mu.Unlock()
}
