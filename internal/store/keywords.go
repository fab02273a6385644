package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"newsdesk/internal/services"
)

// UpsertCategory creates a category by name when missing and returns its ID.
func (s *Store) UpsertCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, services.Wrap(services.ErrValidation, "store", "upsert category", "name required", nil)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO categories (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("read category: %w", err)
	}
	return id, nil
}

// UpsertKeyword creates a keyword when missing and returns its ID.
func (s *Store) UpsertKeyword(ctx context.Context, keyword string) (int64, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return 0, services.Wrap(services.ErrValidation, "store", "upsert keyword", "keyword required", nil)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO keywords (keyword) VALUES (?)", keyword); err != nil {
		return 0, fmt.Errorf("insert keyword: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM keywords WHERE keyword = ?", keyword).Scan(&id); err != nil {
		return 0, fmt.Errorf("read keyword: %w", err)
	}
	return id, nil
}

// SetKeywordWeight attaches a signed weight to a keyword within a category.
func (s *Store) SetKeywordWeight(ctx context.Context, keywordID, categoryID int64, weight float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keyword_weights (keyword_id, category_id, weight)
         VALUES (?, ?, ?)
         ON CONFLICT(keyword_id, category_id) DO UPDATE SET weight = excluded.weight`,
		keywordID, categoryID, weight)
	if err != nil {
		return fmt.Errorf("set keyword weight: %w", err)
	}
	return nil
}

// WeightsForCategories returns the union of keyword weights across the given
// categories.
func (s *Store) WeightsForCategories(ctx context.Context, categoryIDs []int64) ([]KeywordWeight, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kw.keyword_id, k.keyword, kw.category_id, kw.weight
         FROM keyword_weights kw
         JOIN keywords k ON k.id = kw.keyword_id
         WHERE kw.category_id IN (`+placeholders(len(categoryIDs))+`)`,
		int64Args(categoryIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query keyword weights: %w", err)
	}
	defer rows.Close()

	var weights []KeywordWeight
	for rows.Next() {
		var w KeywordWeight
		if err := rows.Scan(&w.KeywordID, &w.Keyword, &w.CategoryID, &w.Weight); err != nil {
			return nil, fmt.Errorf("scan keyword weight: %w", err)
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

// AllCategoryIDs lists every category ID, used as the fallback when a user has
// selected no categories.
func (s *Store) AllCategoryIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// UserCategoryIDs lists the categories a user has selected.
func (s *Store) UserCategoryIDs(ctx context.Context, userID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category_id FROM user_categories WHERE user_id = ? ORDER BY category_id", userID)
	if err != nil {
		return nil, fmt.Errorf("query user categories: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// SetUserCategories replaces a user's category selection.
func (s *Store) SetUserCategories(ctx context.Context, userID string, categoryIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_categories WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear user categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO user_categories (user_id, category_id) VALUES (?, ?)",
			userID, categoryID); err != nil {
			return fmt.Errorf("insert user category: %w", err)
		}
	}
	return tx.Commit()
}

// ReplaceContentKeywords sets the matched keyword set for a content item,
// creating keyword rows as needed.
func (s *Store) ReplaceContentKeywords(ctx context.Context, contentID int64, keywords []string) error {
	ids := make([]int64, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		id, err := s.UpsertKeyword(ctx, keyword)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM content_keywords WHERE content_id = ?", contentID); err != nil {
		return fmt.Errorf("clear content keywords: %w", err)
	}
	for _, keywordID := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO content_keywords (content_id, keyword_id) VALUES (?, ?)",
			contentID, keywordID); err != nil {
			return fmt.Errorf("insert content keyword: %w", err)
		}
	}
	return tx.Commit()
}

// Keywords lists the full keyword vocabulary.
func (s *Store) Keywords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT keyword FROM keywords ORDER BY keyword")
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var keyword string
		if err := rows.Scan(&keyword); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, keyword)
	}
	return keywords, rows.Err()
}

// ContentKeywordIDs returns the keyword IDs matched to a content item.
func (s *Store) ContentKeywordIDs(ctx context.Context, contentID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT keyword_id FROM content_keywords WHERE content_id = ? ORDER BY keyword_id", contentID)
	if err != nil {
		return nil, fmt.Errorf("query content keywords: %w", err)
	}
	defer rows.Close()
	return scanInt64s(rows)
}

func scanInt64s(rows *sql.Rows) ([]int64, error) {
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, nil
		}
		return nil, err
	}
	return out, nil
}
