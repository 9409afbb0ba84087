package booking

import (
	"sort"
	"sync"
	"time"

	"teesheet/models"
)

// BookingStore is the in-memory authoritative collection of bookings for
// the active date. It owns all mutation; external callers only reach it
// through the optimistic mutator so the apply/rollback contract holds.
//
// Every write is an atomic whole-record replacement under the store lock.
// The store performs the final authoritative capacity check on add and
// relocate, independent of the conflict detector, to close races between
// concurrent callers.
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking

	// maxOverrideExtra caps how many seats past capacity an override may
	// claim. Zero means unlimited, matching the observed behavior of
	// operators stacking walk-ons onto a full tee time.
	maxOverrideExtra int
}

func NewBookingStore(maxOverrideExtra int) *BookingStore {
	return &BookingStore{
		bookings:         make(map[string]models.Booking),
		maxOverrideExtra: maxOverrideExtra,
	}
}

// Reset replaces the whole collection, e.g. when the active date changes.
func (s *BookingStore) Reset(bookings []models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = make(map[string]models.Booking, len(bookings))
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
}

// Get returns a copy of the booking with the given id.
func (s *BookingStore) Get(id string) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Len returns the number of records, Cancelled included.
func (s *BookingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

// Add inserts a new booking after the authoritative capacity check and
// assigns the lowest free slot index within the target slot. A full slot
// returns *CapacityConflictError unless override is set; an override past
// the configured ceiling is still rejected.
func (s *BookingStore) Add(b models.Booking, capacity int, override bool) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeLocked(b, capacity, override)
}

// Relocate moves an existing booking to a new tee time, re-checking
// capacity at the destination. A booking moving within its own current
// slot never counts itself as occupying a competing seat.
func (s *BookingStore) Relocate(id string, teeTime time.Time, capacity int, override bool) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, ErrBookingNotFound
	}
	moved := b
	moved.TeeTime = teeTime
	moved.UpdatedAt = time.Now()

	delete(s.bookings, id) // self-exclusion: re-placed below, or restored on conflict
	placed, err := s.placeLocked(moved, capacity, override)
	if err != nil {
		s.bookings[id] = b
		return models.Booking{}, err
	}
	return placed, nil
}

// placeLocked runs the capacity check and slot-index assignment. Caller
// holds the write lock.
func (s *BookingStore) placeLocked(b models.Booking, capacity int, override bool) (models.Booking, error) {
	key := b.SlotKey()
	count := s.activeCountLocked(key)

	if b.Status.Active() && count >= capacity {
		if !override {
			return models.Booking{}, &CapacityConflictError{CurrentCount: count, Capacity: capacity}
		}
		if s.maxOverrideExtra > 0 && count >= capacity+s.maxOverrideExtra {
			return models.Booking{}, &CapacityConflictError{CurrentCount: count, Capacity: capacity + s.maxOverrideExtra}
		}
	}

	b.SlotIndex = s.nextSlotIndexLocked(key)
	s.bookings[b.ID] = b
	return b, nil
}

// Replace overwrites the record with the given id wholesale. A record
// staying active keeps its already-accounted seat, but re-activating a
// Cancelled record re-claims a released seat, so that transition runs
// the authoritative capacity check with no override path.
func (s *BookingStore) Replace(id string, b models.Booking, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	if b.Status.Active() && !old.Status.Active() {
		if count := s.activeCountLocked(b.SlotKey()); count >= capacity {
			return &CapacityConflictError{CurrentCount: count, Capacity: capacity}
		}
	}
	if id != b.ID {
		delete(s.bookings, id)
	}
	s.bookings[b.ID] = b
	return nil
}

// Commit swaps a locally-applied record for the authoritative
// server-returned one. Server-assigned fields (canonical id, timestamps)
// overwrite local guesses. Seat indexes are assigned locally, never by
// the server: the committed record keeps its local index while it stays
// in its slot and gets a fresh one when the server moved it, so a
// server echoing seat zero cannot clobber a real assignment.
func (s *BookingStore) Commit(localID string, confirmed models.Booking) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if local, ok := s.bookings[localID]; ok {
		delete(s.bookings, localID)
		if confirmed.SlotKey() == local.SlotKey() {
			confirmed.SlotIndex = local.SlotIndex
		} else {
			confirmed.SlotIndex = s.nextSlotIndexLocked(confirmed.SlotKey())
		}
	}
	s.bookings[confirmed.ID] = confirmed
	return confirmed
}

// Restore re-inserts a captured pre-image during rollback. It bypasses
// capacity accounting: the seat was already accounted for before the
// optimistic apply, so putting the old record back cannot overfill.
func (s *BookingStore) Restore(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

// Remove deletes the record outright. Soft lifecycle via Cancelled is
// preferred; this exists for rollback of optimistic creates and for the
// explicit hard-delete operation.
func (s *BookingStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

// BookingsForSlot returns the bookings occupying the given slot key,
// ordered by slot index.
func (s *BookingStore) BookingsForSlot(key models.SlotKey) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.SlotKey() == key {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotIndex < out[j].SlotIndex })
	return out
}

// ActiveCount returns the number of seats currently claimed under key.
func (s *BookingStore) ActiveCount(key models.SlotKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCountLocked(key)
}

// Snapshot returns a copy of the whole collection ordered by tee time,
// then slot index. Readers work against the copy lock-free.
func (s *BookingStore) Snapshot() []models.Booking {
	s.mu.RLock()
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].TeeTime.Equal(out[j].TeeTime) {
			return out[i].TeeTime.Before(out[j].TeeTime)
		}
		return out[i].SlotIndex < out[j].SlotIndex
	})
	return out
}

func (s *BookingStore) activeCountLocked(key models.SlotKey) int {
	count := 0
	for _, b := range s.bookings {
		if b.Status.Active() && b.SlotKey() == key {
			count++
		}
	}
	return count
}

// nextSlotIndexLocked returns the lowest index unused by any record in
// the slot, Cancelled included, so indexes stay unique within a slot.
func (s *BookingStore) nextSlotIndexLocked(key models.SlotKey) int {
	taken := make(map[int]bool)
	for _, b := range s.bookings {
		if b.SlotKey() == key {
			taken[b.SlotIndex] = true
		}
	}
	for i := 0; ; i++ {
		if !taken[i] {
			return i
		}
	}
}
