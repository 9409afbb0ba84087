package models

import "time"

// StatsSource marks where a DailyStats value came from.
type StatsSource string

const (
	StatsSourceRemote StatsSource = "remote" // authoritative analytics backend
	StatsSourceLocal  StatsSource = "local"  // best-effort placeholder between refreshes
)

// DailyStats is the aggregate counters for one operating day. Values are
// replaced wholesale on every refresh; fields are never merged individually.
type DailyStats struct {
	BookingCount    int         `json:"booking_count"`
	UtilizationRate float64     `json:"utilization_rate"` // 0.0 - 1.0
	Revenue         float64     `json:"revenue"`
	Source          StatsSource `json:"source"`
	AsOf            time.Time   `json:"as_of"`
}
