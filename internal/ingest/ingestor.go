package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/logging"
	"newsdesk/internal/store"
)

const maxFetchBytes = 4 << 20

// Storage is the persistence surface the ingestor needs.
type Storage interface {
	AddContent(ctx context.Context, item *store.ContentItem) (*store.ContentItem, bool, error)
}

// Ingestor polls configured feeds and stores new entries as content items.
// Entries are deduplicated by feed GUID, so repeated sweeps are idempotent.
type Ingestor struct {
	cfg     config.Ingest
	storage Storage
	client  *http.Client
	logger  *slog.Logger
}

// NewIngestor constructs a feed ingestor from the application configuration.
func NewIngestor(cfg config.Ingest, storage Storage, logger *slog.Logger) *Ingestor {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Ingestor{
		cfg:     cfg,
		storage: storage,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.NewComponentLogger(logger, "ingest"),
	}
}

// SweepAll fetches every configured feed once. Per-feed failures are logged
// and do not abort the sweep. Returns the number of newly stored items.
func (i *Ingestor) SweepAll(ctx context.Context) (int, error) {
	added := 0
	for priority, feedURL := range i.cfg.Feeds {
		if ctx.Err() != nil {
			return added, ctx.Err()
		}
		count, err := i.sweepFeed(ctx, feedURL, priority+1)
		if err != nil {
			i.logger.Warn("feed sweep failed",
				logging.String("feed", feedURL),
				logging.Error(err),
				logging.String(logging.FieldEventType, "feed_sweep_failed"),
			)
			continue
		}
		added += count
	}
	if added > 0 {
		i.logger.Info("feed sweep stored new items",
			logging.Int("added", added),
			logging.String(logging.FieldEventType, "feed_sweep_done"),
		)
	}
	return added, nil
}

func (i *Ingestor) sweepFeed(ctx context.Context, feedURL string, priority int) (int, error) {
	data, err := i.fetch(ctx, feedURL)
	if err != nil {
		return 0, err
	}
	items, err := ParseFeed(data)
	if err != nil {
		return 0, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	added := 0
	for _, entry := range items {
		if ctx.Err() != nil {
			return added, ctx.Err()
		}
		body := entry.Summary
		if i.cfg.FetchFullText && entry.Link != "" {
			if page, err := i.fetch(ctx, entry.Link); err == nil {
				if text := ExtractBody(entry.Link, string(page)); text != "" {
					body = text
				}
			}
		}

		_, inserted, err := i.storage.AddContent(ctx, &store.ContentItem{
			ExternalID:       entry.GUID,
			Title:            entry.Title,
			Body:             body,
			Source:           feedURL,
			Link:             entry.Link,
			PublishedAt:      entry.Published,
			ProviderPriority: priority,
		})
		if err != nil {
			i.logger.Warn("store feed entry failed",
				logging.String("feed", feedURL),
				logging.String("guid", entry.GUID),
				logging.Error(err),
			)
			continue
		}
		if inserted {
			added++
		}
	}
	return added, nil
}

func (i *Ingestor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "newsdesk/0.1")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: http %d", rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return data, nil
}
