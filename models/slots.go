package models

import "time"

// TimeSlot represents one bookable tee-time window on the daily grid.
// Slots are generated per date and never persisted as mutable entities.
type TimeSlot struct {
	Date     string `json:"date"`     // e.g., "2025-02-25"
	Start    int    `json:"start"`    // minutes from midnight (e.g., 420 for 7:00 AM)
	Capacity int    `json:"capacity"` // players per slot (e.g., 4)
}

// Time materializes the slot's tee time in the given location.
func (ts TimeSlot) Time(loc *time.Location) time.Time {
	day, err := time.ParseInLocation("2006-01-02", ts.Date, loc)
	if err != nil {
		return time.Time{}
	}
	return day.Add(time.Duration(ts.Start) * time.Minute)
}

// Key returns the capacity-accounting key for the slot on the given course.
func (ts TimeSlot) Key(loc *time.Location, courseRef string) SlotKey {
	return SlotKey{TeeUnix: ts.Time(loc).Unix(), CourseRef: courseRef}
}

// SlotKey identifies one (teeTime, course) bucket for capacity accounting.
type SlotKey struct {
	TeeUnix   int64
	CourseRef string
}

// GridParams describes the shape of an operating day's slot grid.
type GridParams struct {
	OpenHour        int `json:"open_hour"`  // inclusive, 0-23
	CloseHour       int `json:"close_hour"` // exclusive, 1-24
	IntervalMinutes int `json:"interval_minutes"`
	Capacity        int `json:"capacity"`
}
