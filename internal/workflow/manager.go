package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"newsdesk/internal/batch"
	"newsdesk/internal/config"
	"newsdesk/internal/logging"
	"newsdesk/internal/notifications"
	"newsdesk/internal/store"
)

// Sweeper pulls fresh content from configured feeds.
type Sweeper interface {
	SweepAll(ctx context.Context) (int, error)
}

// BatchRunner drains unprocessed content through AI analysis.
type BatchRunner interface {
	ProcessUnprocessed(ctx context.Context) (batch.ProcessingResult, error)
}

// Manager coordinates the ingest and analysis loops.
type Manager struct {
	cfg       *config.Config
	store     *store.Store
	logger    *slog.Logger
	notifier  notifications.Service
	ingestor  Sweeper
	processor BatchRunner

	ingestPoll time.Duration
	batchPoll  time.Duration
	errorRetry time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error

	lastIngestAt    time.Time
	lastIngestAdded int
	lastBatchAt     time.Time
	lastBatch       batch.ProcessingResult
}

// NewManager constructs a workflow manager from initialized components.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notifications.Service, ingestor Sweeper, processor BatchRunner) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Manager{
		cfg:        cfg,
		store:      st,
		logger:     logger,
		notifier:   notifier,
		ingestor:   ingestor,
		processor:  processor,
		ingestPoll: time.Duration(cfg.Ingest.PollInterval) * time.Second,
		batchPoll:  time.Duration(cfg.Workflow.BatchPollInterval) * time.Second,
		errorRetry: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(3)
	m.mu.Unlock()

	go m.runIngest(runCtx)
	go m.runBatch(runCtx)
	go m.runMaintenance(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
