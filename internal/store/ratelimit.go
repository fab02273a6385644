package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindOrCreateRateLimit returns the counter row for (model, day), creating a
// fresh zero-count row when the day has not been seen yet.
func (s *Store) FindOrCreateRateLimit(ctx context.Context, model, day string, maxPerDay int) (*RateLimitCounter, error) {
	// INSERT OR IGNORE keeps concurrent first-of-day callers converging on one row.
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO rate_limits (model, day, request_count, max_per_day)
         VALUES (?, ?, 0, ?)`,
		model, day, maxPerDay); err != nil {
		return nil, fmt.Errorf("init rate limit row: %w", err)
	}

	counter := &RateLimitCounter{Model: model, Day: day}
	err := s.db.QueryRowContext(ctx,
		"SELECT request_count, max_per_day FROM rate_limits WHERE model = ? AND day = ?",
		model, day).Scan(&counter.RequestCount, &counter.MaxPerDay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rate limit row missing for %s/%s", model, day)
		}
		return nil, fmt.Errorf("read rate limit: %w", err)
	}
	return counter, nil
}

// ConditionalIncrement atomically increments the (model, day) counter only
// while it is below its daily maximum. The guarded UPDATE makes the
// read-check-increment a single statement, so concurrent callers can never
// push request_count past max_per_day.
func (s *Store) ConditionalIncrement(ctx context.Context, model, day string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rate_limits
         SET request_count = request_count + 1
         WHERE model = ? AND day = ? AND request_count < max_per_day`,
		model, day)
	if err != nil {
		return false, fmt.Errorf("increment rate limit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// PruneRateLimits deletes counters older than the given day key.
func (s *Store) PruneRateLimits(ctx context.Context, beforeDay string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rate_limits WHERE day < ?", beforeDay)
	if err != nil {
		return 0, fmt.Errorf("prune rate limits: %w", err)
	}
	return res.RowsAffected()
}
