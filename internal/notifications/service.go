package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/services/gemini"
)

const userAgent = "newsdesk/0.1"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyIngestCompleted(ctx context.Context, added, feeds int) error
	NotifyBatchCompleted(ctx context.Context, processed, failed, remaining int) error
	NotifyDailyLimitReached(ctx context.Context, model string) error
	NotifyArchiveCreated(ctx context.Context, userID string, entries int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyIngestCompleted(ctx context.Context, added, feeds int) error {
	data := payload{
		title:   "Newsdesk - Ingest Complete",
		message: fmt.Sprintf("Fetched %d new items from %d feeds", added, feeds),
		tags:    []string{"newsdesk", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, processed, failed, remaining int) error {
	var title, message string
	if failed == 0 {
		title = "Newsdesk - Batch Complete"
		message = fmt.Sprintf("Analyzed %d items, %d remaining", processed, remaining)
	} else {
		title = "Newsdesk - Batch Complete (with errors)"
		message = fmt.Sprintf("Analyzed %d items, %d failed, %d remaining", processed, failed, remaining)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"newsdesk", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDailyLimitReached(ctx context.Context, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	message := fmt.Sprintf("Daily request limit reached for %s; processing paused until tomorrow", model)
	if desc, ok := gemini.DescriptorByName(model); ok {
		message = fmt.Sprintf("Daily request limit reached for %s (%d requests/day); processing paused until tomorrow", model, desc.RPDLimit)
	}
	data := payload{
		title:    "Newsdesk - Daily Limit",
		message:  message,
		tags:     []string{"newsdesk", "ratelimit", "daily"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyArchiveCreated(ctx context.Context, userID string, entries int) error {
	userID = strings.TrimSpace(userID)
	data := payload{
		title:   "Newsdesk - Daily Picks Ready",
		message: fmt.Sprintf("Built daily archive for %s with %d entries", userID, entries),
		tags:    []string{"newsdesk", "archive", "created"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Newsdesk - Error",
		message:  builder.String(),
		tags:     []string{"newsdesk", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Newsdesk - Test",
		message:  "Notification system test",
		tags:     []string{"newsdesk", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyIngestCompleted(context.Context, int, int) error      { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, int) error  { return nil }
func (noopService) NotifyDailyLimitReached(context.Context, string) error      { return nil }
func (noopService) NotifyArchiveCreated(context.Context, string, int) error    { return nil }
func (noopService) NotifyError(context.Context, error, string) error           { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
