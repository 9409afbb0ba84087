package booking

import (
	"sort"
	"strings"

	"teesheet/models"
)

// ApplyFilter derives the visible booking list from a store snapshot and
// a filter spec. Pure function: the same snapshot and spec always yield
// identical ordered output. Recomputed on every mutation and filter
// change - a day's bookings stay in the low hundreds, so no incremental
// index is kept.
func ApplyFilter(snapshot []models.Booking, spec models.FilterSpec) []models.Booking {
	out := make([]models.Booking, 0, len(snapshot))
	for _, b := range snapshot {
		if matches(b, spec) {
			out = append(out, b)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TeeTime.Equal(out[j].TeeTime) {
			return out[i].TeeTime.Before(out[j].TeeTime)
		}
		return out[i].SlotIndex < out[j].SlotIndex
	})
	return out
}

// matches applies AND semantics across dimensions; the search text uses
// OR semantics across player name, notes, and course.
func matches(b models.Booking, spec models.FilterSpec) bool {
	if !spec.HasStatus(b.Status) {
		return false
	}
	if !spec.HasCourse(b.CourseRef) {
		return false
	}
	if !spec.InRange(b.TeeTime) {
		return false
	}
	if spec.SearchText == "" {
		return true
	}

	needle := strings.ToLower(spec.SearchText)
	return strings.Contains(strings.ToLower(b.PlayerName), needle) ||
		strings.Contains(strings.ToLower(b.Notes), needle) ||
		strings.Contains(strings.ToLower(b.CourseRef), needle)
}
