package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teesheet/models"
)

func filterFixture() []models.Booking {
	alice := testBooking("b1", "Alice Akers", teeAt(9))
	alice.CourseRef = "north"
	alice.Notes = "prefers early start"

	bob := testBooking("b2", "Bob Birch", teeAt(9))
	bob.CourseRef = "south"
	bob.SlotIndex = 1
	bob.Status = models.StatusCheckedIn

	carol := testBooking("b3", "Carol Crane", teeAt(14))
	carol.CourseRef = "north"
	carol.Status = models.StatusCancelled
	carol.Notes = "rain check for alice's group"

	return []models.Booking{carol, bob, alice} // deliberately unsorted
}

func TestApplyFilter_EmptySpecSortsByTeeTimeThenSlotIndex(t *testing.T) {
	out := ApplyFilter(filterFixture(), models.FilterSpec{})
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b1", "b2", "b3"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestApplyFilter_IsDeterministic(t *testing.T) {
	snapshot := filterFixture()
	spec := models.FilterSpec{SearchText: "alice"}

	first := ApplyFilter(snapshot, spec)
	second := ApplyFilter(snapshot, spec)
	assert.Equal(t, first, second)
}

func TestApplyFilter_SearchTextMatchesAnyField(t *testing.T) {
	snapshot := filterFixture()

	// Case-insensitive against the player name.
	out := ApplyFilter(snapshot, models.FilterSpec{SearchText: "ALICE"})
	require.Len(t, out, 2) // Alice herself plus Carol's note mentioning alice
	assert.Equal(t, "b1", out[0].ID)
	assert.Equal(t, "b3", out[1].ID)

	// Against notes only.
	out = ApplyFilter(snapshot, models.FilterSpec{SearchText: "rain check"})
	require.Len(t, out, 1)
	assert.Equal(t, "b3", out[0].ID)

	// Against the course name.
	out = ApplyFilter(snapshot, models.FilterSpec{SearchText: "south"})
	require.Len(t, out, 1)
	assert.Equal(t, "b2", out[0].ID)
}

func TestApplyFilter_DimensionsCombineWithAnd(t *testing.T) {
	snapshot := filterFixture()

	// Search text OR-matches fields, but AND-combines with status.
	out := ApplyFilter(snapshot, models.FilterSpec{
		SearchText: "alice",
		Statuses:   []models.BookingStatus{models.StatusConfirmed},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "b1", out[0].ID)

	out = ApplyFilter(snapshot, models.FilterSpec{
		Courses:  []string{"north"},
		Statuses: []models.BookingStatus{models.StatusConfirmed, models.StatusCheckedIn},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "b1", out[0].ID)
}

func TestApplyFilter_TimeRange(t *testing.T) {
	snapshot := filterFixture()

	out := ApplyFilter(snapshot, models.FilterSpec{
		From: teeAt(9),
		To:   teeAt(9).Add(time.Hour),
	})
	require.Len(t, out, 2)
	assert.Equal(t, "b1", out[0].ID)
	assert.Equal(t, "b2", out[1].ID)

	// To is exclusive.
	out = ApplyFilter(snapshot, models.FilterSpec{From: teeAt(10), To: teeAt(14)})
	assert.Empty(t, out)
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	snapshot := filterFixture()
	original := make([]models.Booking, len(snapshot))
	copy(original, snapshot)

	ApplyFilter(snapshot, models.FilterSpec{SearchText: "alice"})
	assert.Equal(t, original, snapshot)
}
