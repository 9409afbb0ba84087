package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"teesheet/models"
	"teesheet/utils"
)

const reconcileTickTimeout = 10 * time.Second

// ReconciliationLoop periodically pulls authoritative daily aggregates
// from the analytics backend and publishes them wholesale. It is owned by
// the facade's date context: started on LoadDay, stopped on reload or
// Close, never a process-wide singleton. The loop only reads the booking
// store (for local-fallback stats) and writes only the DailyStats value,
// never booking records.
type ReconciliationLoop struct {
	analytics AnalyticsBackend
	tenantID  string
	date      time.Time
	publish   func(models.DailyStats)
	cron      *cron.Cron
}

func NewReconciliationLoop(analytics AnalyticsBackend, tenantID string, date time.Time, publish func(models.DailyStats)) *ReconciliationLoop {
	return &ReconciliationLoop{
		analytics: analytics,
		tenantID:  tenantID,
		date:      date,
		publish:   publish,
	}
}

// Start schedules the background ticks at the given interval.
func (r *ReconciliationLoop) Start(interval time.Duration) error {
	if r.cron != nil {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTickTimeout)
		defer cancel()
		// Background refresh failures stay silent: they never block
		// interactive operations. TickNow logs them.
		_ = r.TickNow(ctx)
	})
	if err != nil {
		return err
	}
	r.cron = c
	c.Start()
	utils.GetLogger().Info("reconciliation loop started",
		zap.String("tenantID", r.tenantID),
		zap.Duration("interval", interval))
	return nil
}

// Stop halts the background ticks. Safe to call on a never-started loop.
func (r *ReconciliationLoop) Stop() {
	if r.cron == nil {
		return
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.cron = nil
	utils.GetLogger().Info("reconciliation loop stopped", zap.String("tenantID", r.tenantID))
}

// TickNow fetches the remote aggregates once. On success the stats value
// is replaced wholesale - no partial merge, so stale fields never mix. On
// failure the previous value is kept and the error is only logged; the
// caller decides whether it is user-visible (initial load) or not.
func (r *ReconciliationLoop) TickNow(ctx context.Context) error {
	stats, err := r.analytics.FetchDailyStats(ctx, r.tenantID, r.date)
	if err != nil {
		utils.GetLogger().Warn("stats reconciliation tick failed",
			zap.String("tenantID", r.tenantID),
			zap.Error(err))
		return err
	}
	stats.Source = models.StatsSourceRemote
	if stats.AsOf.IsZero() {
		stats.AsOf = time.Now()
	}
	r.publish(stats)
	return nil
}

// ComputeLocalStats derives a best-effort placeholder from the local
// store between remote refreshes. Only active (non-Cancelled) bookings
// count toward occupancy and revenue.
func ComputeLocalStats(snapshot []models.Booking, totalSeats int) models.DailyStats {
	stats := models.DailyStats{Source: models.StatsSourceLocal, AsOf: time.Now()}
	for _, b := range snapshot {
		if !b.Status.Active() {
			continue
		}
		stats.BookingCount++
		stats.Revenue += b.Fee
	}
	if totalSeats > 0 {
		stats.UtilizationRate = float64(stats.BookingCount) / float64(totalSeats)
		if stats.UtilizationRate > 1 {
			stats.UtilizationRate = 1
		}
	}
	return stats
}
