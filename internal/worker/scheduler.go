package worker

// scheduler.go
// Background goroutine that periodically runs saved reports whose schedule
// interval has elapsed. Report results are recomputed from live data; only
// the last_run stamp persists between ticks.

import (
	"context"
	"time"

	"github.com/tkamphefner/Inventory/internal/service"

	"github.com/rs/zerolog/log"
)

// StartReportScheduler launches a goroutine that ticks every interval and
// executes due scheduled reports. It respects the context for graceful
// shutdown.
func StartReportScheduler(ctx context.Context, reports service.ReportService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("report scheduler: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("report scheduler: shutting down")
				return
			case <-ticker.C:
				ran, err := reports.RunDue(ctx, time.Now().UTC())
				if err != nil {
					log.Error().Err(err).Msg("report scheduler: tick failed")
					continue
				}
				if ran > 0 {
					log.Info().Int("reports_run", ran).Msg("report scheduler: tick complete")
				}
			}
		}
	}()
}
