package booking

import (
	"context"

	"go.uber.org/zap"

	"teesheet/models"
	"teesheet/utils"
)

// mutationRequest describes one optimistic mutation. Each instance moves
// Requested -> AppliedLocally -> Confirmed | RolledBack; Confirmed and
// RolledBack always follow AppliedLocally, never reordered. preImage is
// the captured value to restore on rollback; nil means the record did
// not exist before (create), so rollback removes it.
type mutationRequest struct {
	op       string
	preImage *models.Booking

	// apply runs the local change against the store and returns the
	// locally-applied record. Capacity and validation failures surface
	// here, before any remote call.
	apply func() (models.Booking, error)

	// remote issues the confirmation call. It runs outside every lock.
	remote func(ctx context.Context, local models.Booking) (models.Booking, error)

	// onApplied fires right after the local apply so observers see the
	// change immediately; onResolved fires after confirm or rollback.
	// Either may be nil (bulk batches debounce notifications).
	onApplied  func(local models.Booking)
	onResolved func(kind ChangeKind, b models.Booking)
}

// OptimisticMutator applies a mutation locally first, then awaits remote
// confirmation. On success the server-returned record overwrites the
// local guess; on failure the captured pre-image is restored and the
// error is surfaced as *RemoteRejectedError.
type OptimisticMutator struct {
	store *BookingStore
}

func NewOptimisticMutator(store *BookingStore) *OptimisticMutator {
	return &OptimisticMutator{store: store}
}

func (m *OptimisticMutator) Execute(ctx context.Context, req mutationRequest) (models.Booking, error) {
	logger := utils.GetLogger()

	local, err := req.apply()
	if err != nil {
		return models.Booking{}, err
	}
	if req.onApplied != nil {
		req.onApplied(local)
	}

	// The store is unlocked while the remote confirmation is in flight;
	// local application happens-before the remote call.
	confirmed, err := req.remote(ctx, local)
	if err != nil {
		m.rollback(req, local)
		logger.Error("optimistic mutation rolled back",
			zap.String("op", req.op),
			zap.String("bookingID", local.ID),
			zap.Error(err))
		if req.onResolved != nil {
			req.onResolved(ChangeRolledBack, local)
		}
		return models.Booking{}, &RemoteRejectedError{Op: req.op, Err: err}
	}

	committed := m.store.Commit(local.ID, confirmed)
	logger.Debug("optimistic mutation confirmed",
		zap.String("op", req.op),
		zap.String("bookingID", committed.ID))
	if req.onResolved != nil {
		req.onResolved(ChangeConfirmed, committed)
	}
	return committed, nil
}

// rollback restores the exact pre-apply state: the pre-image for updates,
// moves, and removes, outright removal for creates.
func (m *OptimisticMutator) rollback(req mutationRequest, local models.Booking) {
	if req.preImage == nil {
		_ = m.store.Remove(local.ID)
		return
	}
	if local.ID != req.preImage.ID {
		_ = m.store.Remove(local.ID)
	}
	m.store.Restore(*req.preImage)
}
