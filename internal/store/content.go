package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/internal/services"
)

const contentColumns = "id, external_id, title, body, length_chars, source, link, published_at, provider_priority, created_at, updated_at"

// AddContent inserts a new content item keyed by its external ID. When an item
// with the same external ID already exists, the existing row is returned and
// inserted is false.
func (s *Store) AddContent(ctx context.Context, item *ContentItem) (*ContentItem, bool, error) {
	if item == nil {
		return nil, false, errors.New("content item required")
	}
	externalID := strings.TrimSpace(item.ExternalID)
	if externalID == "" {
		return nil, false, services.Wrap(services.ErrValidation, "store", "add content", "external id required", nil)
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, false, services.Wrap(services.ErrValidation, "store", "add content", "title required", nil)
	}

	if existing, err := s.ContentByExternalID(ctx, externalID); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	timestamp := formatTimestamp(now)
	published := item.PublishedAt
	if published.IsZero() {
		published = now
	}
	priority := item.ProviderPriority
	if priority <= 0 {
		priority = 100
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO content_items (
            external_id, title, body, length_chars, source, link,
            published_at, provider_priority, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		externalID,
		title,
		item.Body,
		len([]rune(item.Body)),
		nullableString(item.Source),
		nullableString(item.Link),
		formatTimestamp(published),
		priority,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert content: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	inserted, err := s.ContentByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return inserted, true, nil
}

// ContentByID fetches a content item by primary key.
func (s *Store) ContentByID(ctx context.Context, id int64) (*ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contentColumns+" FROM content_items WHERE id = ?", id)
	item, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "content", fmt.Sprintf("id %d", id), nil)
	}
	return item, err
}

// ContentByExternalID fetches a content item by its feed GUID/link. Returns
// nil without error when absent.
func (s *Store) ContentByExternalID(ctx context.Context, externalID string) (*ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contentColumns+" FROM content_items WHERE external_id = ?", externalID)
	item, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// FetchUnprocessed returns up to limit content items that have no exposure
// yet, ordered by provider priority then recency.
func (s *Store) FetchUnprocessed(ctx context.Context, limit int) ([]*ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixedContentColumns("c")+`
         FROM content_items c
         LEFT JOIN exposures e ON e.content_id = c.id
         WHERE e.id IS NULL
         ORDER BY c.provider_priority ASC, c.published_at DESC, c.id ASC
         LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed: %w", err)
	}
	defer rows.Close()

	var items []*ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountUnprocessed returns the number of content items without an exposure.
func (s *Store) CountUnprocessed(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1)
         FROM content_items c
         LEFT JOIN exposures e ON e.content_id = c.id
         WHERE e.id IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unprocessed: %w", err)
	}
	return count, nil
}

// ContentCount returns the total number of stored content items.
func (s *Store) ContentCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM content_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return count, nil
}

// ListRecentContent returns the most recently published items, newest first.
func (s *Store) ListRecentContent(ctx context.Context, limit int) ([]*ContentItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+contentColumns+" FROM content_items ORDER BY published_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []*ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func prefixedContentColumns(alias string) string {
	cols := strings.Split(contentColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

func scanContent(scanner interface{ Scan(dest ...any) error }) (*ContentItem, error) {
	var (
		id           int64
		externalID   string
		title        string
		body         string
		lengthChars  int
		source       sql.NullString
		link         sql.NullString
		publishedRaw string
		priority     int
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&externalID,
		&title,
		&body,
		&lengthChars,
		&source,
		&link,
		&publishedRaw,
		&priority,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan content: %w", err)
	}

	return &ContentItem{
		ID:               id,
		ExternalID:       externalID,
		Title:            title,
		Body:             body,
		LengthChars:      lengthChars,
		Source:           stringOrEmpty(source),
		Link:             stringOrEmpty(link),
		PublishedAt:      parseTimestamp(publishedRaw),
		ProviderPriority: priority,
		CreatedAt:        parseTimestamp(createdRaw),
		UpdatedAt:        parseTimestamp(updatedRaw),
	}, nil
}
