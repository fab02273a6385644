package workflow

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/logging"
	"newsdesk/internal/services"
	"newsdesk/internal/store"
)

var errAlreadyRunning = errors.New("workflow already running")

func (m *Manager) runIngest(ctx context.Context) {
	defer m.wg.Done()
	if m.ingestor == nil {
		return
	}
	logger := logging.NewComponentLogger(m.logger, "ingest")

	for {
		added, err := m.ingestor.SweepAll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			logger.Error("feed sweep failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ingest_sweep_failed"),
				logging.String(logging.FieldErrorHint, "check feed URLs and network access"),
			)
			if err := m.notifier.NotifyError(ctx, err, "ingest"); err != nil {
				logger.Warn("ingest failure notification failed", logging.Error(err))
			}
			if !m.sleep(ctx, m.errorRetry) {
				return
			}
			continue
		}

		m.mu.Lock()
		m.lastIngestAt = time.Now().UTC()
		m.lastIngestAdded = added
		m.mu.Unlock()

		if added > 0 {
			logger.Info("feed sweep completed",
				logging.Int("added", added),
				logging.String(logging.FieldEventType, "ingest_sweep_completed"),
			)
			if err := m.notifier.NotifyIngestCompleted(ctx, added, len(m.cfg.Ingest.Feeds)); err != nil {
				logger.Warn("ingest notification failed", logging.Error(err))
			}
		}

		if !m.sleep(ctx, m.ingestPoll) {
			return
		}
	}
}

func (m *Manager) runBatch(ctx context.Context) {
	defer m.wg.Done()
	if m.processor == nil {
		return
	}
	logger := logging.NewComponentLogger(m.logger, "batch")

	for {
		result, err := m.processor.ProcessUnprocessed(ctx)

		m.mu.Lock()
		m.lastBatchAt = time.Now().UTC()
		m.lastBatch = result
		m.mu.Unlock()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			if services.IsDailyLimit(err) {
				model := ""
				if rl, ok := services.AsRateLimit(err); ok {
					model = rl.Model
				}
				logger.Warn("daily request limit reached; pausing until tomorrow",
					logging.String(logging.FieldModel, model),
					logging.String(logging.FieldEventType, "daily_limit_reached"),
				)
				if err := m.notifier.NotifyDailyLimitReached(ctx, model); err != nil {
					logger.Warn("daily limit notification failed", logging.Error(err))
				}
				if !m.sleep(ctx, untilNextDay(time.Now().UTC())) {
					return
				}
				continue
			}
			logger.Error("batch processing failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "batch_failed"),
				logging.String(logging.FieldErrorHint, "check AI service availability"),
			)
			if err := m.notifier.NotifyError(ctx, err, "batch"); err != nil {
				logger.Warn("batch failure notification failed", logging.Error(err))
			}
			if !m.sleep(ctx, m.errorRetry) {
				return
			}
			continue
		}

		if result.Processed > 0 || result.Errors > 0 {
			logger.Info("batch completed",
				logging.Int("processed", result.Processed),
				logging.Int("errors", result.Errors),
				logging.Int("remaining", result.Remaining),
				logging.String(logging.FieldEventType, "batch_completed"),
			)
			if err := m.notifier.NotifyBatchCompleted(ctx, result.Processed, result.Errors, result.Remaining); err != nil {
				logger.Warn("batch notification failed", logging.Error(err))
			}
		}

		// Drain the backlog without waiting when more work is queued.
		if result.Remaining > 0 && result.Processed > 0 {
			continue
		}
		if !m.sleep(ctx, m.batchPoll) {
			return
		}
	}
}

func (m *Manager) runMaintenance(ctx context.Context) {
	defer m.wg.Done()
	logger := logging.NewComponentLogger(m.logger, "maintenance")

	for {
		retention := m.cfg.Logging.RetentionDays
		if retention <= 0 {
			retention = 30
		}
		beforeDay := store.DayKey(time.Now().UTC().AddDate(0, 0, -retention))
		pruned, err := m.store.PruneRateLimits(ctx, beforeDay)
		if err != nil {
			logger.Warn("rate limit pruning failed", logging.Error(err))
		} else if pruned > 0 {
			logger.Info("pruned stale rate limit counters", logging.Int64("pruned", pruned))
		}

		if !m.sleep(ctx, 24*time.Hour) {
			return
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func untilNextDay(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(now)
}
