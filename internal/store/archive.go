package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrArchiveExists signals that another caller already created the archive for
// the same (user, day). Callers should re-read and return the existing row.
var ErrArchiveExists = errors.New("daily archive already exists")

// FindArchive fetches the archive for (userID, day). Returns nil without error
// when no archive has been computed yet.
func (s *Store) FindArchive(ctx context.Context, userID, day string) (*DailyArchive, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, day, snapshot_json, created_at FROM daily_archives WHERE user_id = ? AND day = ?",
		userID, day)

	var (
		id          string
		uid         string
		dayKey      string
		snapshotRaw string
		createdRaw  string
	)
	if err := row.Scan(&id, &uid, &dayKey, &snapshotRaw, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive: %w", err)
	}

	archive := &DailyArchive{
		ID:        id,
		UserID:    uid,
		Day:       dayKey,
		CreatedAt: parseTimestamp(createdRaw),
	}
	if err := json.Unmarshal([]byte(snapshotRaw), &archive.Snapshot); err != nil {
		return nil, fmt.Errorf("decode archive snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT exposure_id FROM archive_entries WHERE archive_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("read archive entries: %w", err)
	}
	defer rows.Close()
	archive.ExposureIDs, err = scanInt64s(rows)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// CreateArchive persists a new daily archive and its ordered entries in one
// transaction. The (user_id, day) uniqueness constraint makes concurrent
// creations converge: the loser receives ErrArchiveExists.
func (s *Store) CreateArchive(ctx context.Context, archive *DailyArchive) error {
	if archive == nil {
		return errors.New("archive required")
	}
	snapshot, err := json.Marshal(archive.Snapshot)
	if err != nil {
		return fmt.Errorf("encode archive snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := formatTimestamp(time.Now().UTC())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO daily_archives (id, user_id, day, snapshot_json, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		archive.ID, archive.UserID, archive.Day, string(snapshot), timestamp); err != nil {
		if isUniqueViolation(err) {
			return ErrArchiveExists
		}
		return fmt.Errorf("insert archive: %w", err)
	}

	for position, exposureID := range archive.ExposureIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO archive_entries (archive_id, position, exposure_id) VALUES (?, ?, ?)",
			archive.ID, position, exposureID); err != nil {
			return fmt.Errorf("insert archive entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	archive.CreatedAt = parseTimestamp(timestamp)
	return nil
}

// CandidateExposures returns exposures the user has never been served in any
// daily archive, restricted to content matching at least one of the given
// keywords.
func (s *Store) CandidateExposures(ctx context.Context, userID string, keywordIDs []int64) ([]Candidate, error) {
	if len(keywordIDs) == 0 {
		return nil, nil
	}
	args := []any{}
	args = append(args, int64Args(keywordIDs)...)
	args = append(args, userID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, c.id, c.published_at
         FROM exposures e
         JOIN content_items c ON c.id = e.content_id
         WHERE EXISTS (
            SELECT 1 FROM content_keywords ck
            WHERE ck.content_id = c.id AND ck.keyword_id IN (`+placeholders(len(keywordIDs))+`)
         )
         AND NOT EXISTS (
            SELECT 1 FROM archive_entries ae
            JOIN daily_archives da ON da.id = ae.archive_id
            WHERE ae.exposure_id = e.id AND da.user_id = ?
         )
         ORDER BY e.id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var (
			candidate    Candidate
			publishedRaw string
		)
		if err := rows.Scan(&candidate.ExposureID, &candidate.ContentID, &publishedRaw); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidate.PublishedAt = parseTimestamp(publishedRaw)
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

// ArchiveCount returns the total number of daily archives.
func (s *Store) ArchiveCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM daily_archives").Scan(&count); err != nil {
		return 0, fmt.Errorf("count archives: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
