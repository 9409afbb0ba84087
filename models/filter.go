package models

import "time"

// FilterSpec narrows the visible booking list. Zero values leave a
// dimension unconstrained. SearchText matches any of player name, notes,
// or course; the other dimensions are combined with AND.
type FilterSpec struct {
	SearchText string          `json:"search_text,omitempty"`
	Statuses   []BookingStatus `json:"statuses,omitempty"`
	Courses    []string        `json:"courses,omitempty"`
	From       time.Time       `json:"from,omitempty"` // inclusive
	To         time.Time       `json:"to,omitempty"`   // exclusive
}

// HasStatus reports whether the spec admits the given status.
// An empty status set admits everything.
func (f FilterSpec) HasStatus(s BookingStatus) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// HasCourse reports whether the spec admits the given course.
func (f FilterSpec) HasCourse(course string) bool {
	if len(f.Courses) == 0 {
		return true
	}
	for _, c := range f.Courses {
		if c == course {
			return true
		}
	}
	return false
}

// InRange reports whether t falls inside the spec's time window.
func (f FilterSpec) InRange(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}
