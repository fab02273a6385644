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

const exposureColumns = "id, content_id, provocative_keyword, headline, summary_text, model, created_at"

// UpsertExposure creates or replaces the exposure for a content item. The
// content_id uniqueness constraint guarantees at most one exposure per item.
func (s *Store) UpsertExposure(ctx context.Context, exp *Exposure) (*Exposure, error) {
	if exp == nil {
		return nil, errors.New("exposure required")
	}
	if exp.ContentID == 0 {
		return nil, services.Wrap(services.ErrValidation, "store", "upsert exposure", "content id required", nil)
	}
	if strings.TrimSpace(exp.Headline) == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "upsert exposure", "headline required", nil)
	}

	timestamp := formatTimestamp(time.Now().UTC())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exposures (content_id, provocative_keyword, headline, summary_text, model, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(content_id) DO UPDATE SET
            provocative_keyword = excluded.provocative_keyword,
            headline = excluded.headline,
            summary_text = excluded.summary_text,
            model = excluded.model`,
		exp.ContentID,
		exp.ProvocativeKeyword,
		exp.Headline,
		exp.SummaryText,
		exp.Model,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert exposure: %w", err)
	}
	return s.ExposureByContent(ctx, exp.ContentID)
}

// ExposureByContent fetches the exposure for a content item. Returns nil
// without error when the item has not been processed yet.
func (s *Store) ExposureByContent(ctx context.Context, contentID int64) (*Exposure, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+exposureColumns+" FROM exposures WHERE content_id = ?", contentID)
	exp, err := scanExposure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return exp, err
}

// ExposuresByIDs fetches exposures preserving the order of the supplied IDs.
func (s *Store) ExposuresByIDs(ctx context.Context, ids []int64) ([]*Exposure, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+exposureColumns+" FROM exposures WHERE id IN ("+placeholders(len(ids))+")",
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query exposures: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*Exposure, len(ids))
	for rows.Next() {
		exp, err := scanExposure(rows)
		if err != nil {
			return nil, err
		}
		byID[exp.ID] = exp
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*Exposure, 0, len(ids))
	for _, id := range ids {
		if exp, ok := byID[id]; ok {
			ordered = append(ordered, exp)
		}
	}
	return ordered, nil
}

// ExposureCount returns the total number of exposures.
func (s *Store) ExposureCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM exposures").Scan(&count); err != nil {
		return 0, fmt.Errorf("count exposures: %w", err)
	}
	return count, nil
}

func scanExposure(scanner interface{ Scan(dest ...any) error }) (*Exposure, error) {
	var (
		id         int64
		contentID  int64
		keyword    string
		headline   string
		summary    string
		model      string
		createdRaw string
	)
	if err := scanner.Scan(&id, &contentID, &keyword, &headline, &summary, &model, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan exposure: %w", err)
	}
	return &Exposure{
		ID:                 id,
		ContentID:          contentID,
		ProvocativeKeyword: keyword,
		Headline:           headline,
		SummaryText:        summary,
		Model:              model,
		CreatedAt:          parseTimestamp(createdRaw),
	}, nil
}
