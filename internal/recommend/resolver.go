package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/logging"
	"newsdesk/internal/store"
)

// MaxArchiveSize is the number of exposures served per user per day.
const MaxArchiveSize = 6

// Storage is the persistence surface the resolver needs.
type Storage interface {
	FindArchive(ctx context.Context, userID, day string) (*store.DailyArchive, error)
	CreateArchive(ctx context.Context, archive *store.DailyArchive) error
	UserCategoryIDs(ctx context.Context, userID string) ([]int64, error)
	AllCategoryIDs(ctx context.Context) ([]int64, error)
	WeightsForCategories(ctx context.Context, categoryIDs []int64) ([]store.KeywordWeight, error)
	CandidateExposures(ctx context.Context, userID string, keywordIDs []int64) ([]store.Candidate, error)
	ContentKeywordIDs(ctx context.Context, contentID int64) ([]int64, error)
}

// Resolver computes a user's daily archive: the ranked selection of content
// the user has not yet seen. The result is cached per (user, day) and
// immutable after first computation.
type Resolver struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewResolver constructs an archive resolver.
func NewResolver(storage Storage, logger *slog.Logger) *Resolver {
	return &Resolver{
		storage: storage,
		logger:  logging.NewComponentLogger(logger, "recommend"),
		now:     time.Now,
	}
}

// WithClock overrides the wall clock (used in tests).
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	clone := *r
	clone.now = now
	return &clone
}

// ResolveDaily returns the archive for (userID, day), computing and
// persisting it on first call. Later calls for the same key return the stored
// row unchanged. Concurrent first calls converge through the store's
// uniqueness constraint: the loser re-reads the winner's archive.
func (r *Resolver) ResolveDaily(ctx context.Context, userID string, day time.Time) (*store.DailyArchive, error) {
	dayKey := store.DayKey(day)

	existing, err := r.storage.FindArchive(ctx, userID, dayKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	categoryIDs, err := r.storage.UserCategoryIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(categoryIDs) == 0 {
		if categoryIDs, err = r.storage.AllCategoryIDs(ctx); err != nil {
			return nil, err
		}
	}

	weights, err := r.storage.WeightsForCategories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	weightsByKeyword := make(map[int64][]float64, len(weights))
	keywordIDs := make([]int64, 0, len(weights))
	for _, w := range weights {
		if _, seen := weightsByKeyword[w.KeywordID]; !seen {
			keywordIDs = append(keywordIDs, w.KeywordID)
		}
		weightsByKeyword[w.KeywordID] = append(weightsByKeyword[w.KeywordID], w.Weight)
	}

	exposureIDs, err := r.rankCandidates(ctx, userID, keywordIDs, weightsByKeyword, day)
	if err != nil {
		return nil, err
	}

	archive := &store.DailyArchive{
		ID:     uuid.NewString(),
		UserID: userID,
		Day:    dayKey,
		Snapshot: store.ArchiveSnapshot{
			UserID:      userID,
			CategoryIDs: categoryIDs,
			KeywordIDs:  keywordIDs,
		},
		ExposureIDs: exposureIDs,
	}

	if err := r.storage.CreateArchive(ctx, archive); err != nil {
		if errors.Is(err, store.ErrArchiveExists) {
			winner, findErr := r.storage.FindArchive(ctx, userID, dayKey)
			if findErr != nil {
				return nil, findErr
			}
			if winner == nil {
				return nil, fmt.Errorf("archive for %s/%s vanished after conflict", userID, dayKey)
			}
			return winner, nil
		}
		return nil, err
	}

	r.logger.Info("daily archive computed",
		logging.String(logging.FieldUserID, userID),
		logging.String("day", dayKey),
		logging.Int("entries", len(exposureIDs)),
		logging.String(logging.FieldEventType, "archive_created"),
	)
	return archive, nil
}

type scoredCandidate struct {
	exposureID int64
	score      float64
}

func (r *Resolver) rankCandidates(ctx context.Context, userID string, keywordIDs []int64, weightsByKeyword map[int64][]float64, day time.Time) ([]int64, error) {
	candidates, err := r.storage.CandidateExposures(ctx, userID, keywordIDs)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if !day.IsZero() {
		now = day
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		matchedIDs, err := r.storage.ContentKeywordIDs(ctx, candidate.ContentID)
		if err != nil {
			return nil, err
		}
		var set WeightSet
		for _, keywordID := range matchedIDs {
			for _, weight := range weightsByKeyword[keywordID] {
				if weight >= 0 {
					set.Positive = append(set.Positive, weight)
				} else {
					set.Negative = append(set.Negative, weight)
				}
			}
		}
		score := Score(set, candidate.PublishedAt, now)
		if score > 0 {
			scored = append(scored, scoredCandidate{exposureID: candidate.ExposureID, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > MaxArchiveSize {
		scored = scored[:MaxArchiveSize]
	}

	exposureIDs := make([]int64, 0, len(scored))
	for _, candidate := range scored {
		exposureIDs = append(exposureIDs, candidate.exposureID)
	}
	return exposureIDs, nil
}
