package workflow

import (
	"context"
	"time"

	"newsdesk/internal/batch"
	"newsdesk/internal/logging"
)

// StatusSummary represents lightweight pipeline diagnostics.
type StatusSummary struct {
	Running         bool
	LastError       string
	LastIngestAt    time.Time
	LastIngestAdded int
	LastBatchAt     time.Time
	LastBatch       batch.ProcessingResult
	ContentCount    int
	ExposureCount   int
	Unprocessed     int
	ArchiveCount    int
}

// Status returns the latest pipeline information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:         m.running,
		LastIngestAt:    m.lastIngestAt,
		LastIngestAdded: m.lastIngestAdded,
		LastBatchAt:     m.lastBatchAt,
		LastBatch:       m.lastBatch,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	m.mu.RUnlock()

	counts := []struct {
		dst  *int
		load func(context.Context) (int, error)
	}{
		{&summary.ContentCount, m.store.ContentCount},
		{&summary.ExposureCount, m.store.ExposureCount},
		{&summary.Unprocessed, m.store.CountUnprocessed},
		{&summary.ArchiveCount, m.store.ArchiveCount},
	}
	for _, c := range counts {
		value, err := c.load(ctx)
		if err != nil {
			m.logger.Warn("failed to read store stats", logging.Error(err))
			continue
		}
		*c.dst = value
	}
	return summary
}
