package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"newsdesk/internal/analysis"
	"newsdesk/internal/batch"
	"newsdesk/internal/config"
	"newsdesk/internal/daemon"
	"newsdesk/internal/ingest"
	"newsdesk/internal/logging"
	"newsdesk/internal/notifications"
	"newsdesk/internal/ratelimit"
	"newsdesk/internal/services/gemini"
	"newsdesk/internal/store"
	"newsdesk/internal/workflow"
)

// Run starts the newsdesk daemon runtime loop and blocks until the process
// receives an interrupt or termination signal.
func Run(cmdCtx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	sessionID := uuid.NewString()
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))

	pidPath := filepath.Join(cfg.Paths.LogDir, "newsdesk.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	notifier := notifications.NewService(cfg)
	ingestor := ingest.NewIngestor(cfg.Ingest, st, logger)

	client := gemini.NewClient(gemini.ConfigFromApp(cfg))
	limiter := ratelimit.NewLimiter(st, logger)
	orchestrator := analysis.NewOrchestrator(client, limiter, logger)
	guard := batch.NewFlockGuard(filepath.Join(cfg.Paths.LogDir, "newsdesk-batch.lock"))
	processor := batch.NewProcessor(st, orchestrator, guard, logger)

	manager := workflow.NewManager(cfg, st, logger, notifier, ingestor, processor)

	d, err := daemon.New(cfg, st, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and database access"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("newsdesk daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
