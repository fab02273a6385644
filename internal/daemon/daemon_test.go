package daemon_test

import (
	"context"
	"testing"

	"newsdesk/internal/daemon"
	"newsdesk/internal/logging"
	"newsdesk/internal/testsupport"
	"newsdesk/internal/workflow"
)

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	first, err := daemon.New(cfg, st, logger, workflow.NewManager(cfg, st, logger, nil, nil, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, st, logger, workflow.NewManager(cfg, st, logger, nil, nil, nil))
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon must fail to acquire the lock")
	}

	status := first.Status(context.Background())
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("status must report running, got %+v", status)
	}
	if status.LockFilePath != cfg.LockFilePath() {
		t.Fatalf("LockFilePath = %q", status.LockFilePath)
	}

	first.Stop()
	if first.Status(context.Background()).Running {
		t.Fatal("status must report stopped after Stop")
	}

	// Lock is free again after Stop.
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("restart after release: %v", err)
	}
	second.Stop()
}

func TestTestNotificationRequiresTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	d, err := daemon.New(cfg, st, logger, workflow.NewManager(cfg, st, logger, nil, nil, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if sent {
		t.Fatal("notification must not send without a topic")
	}
	if message == "" {
		t.Fatal("expected an explanatory message")
	}
}
