package recommend_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"newsdesk/internal/logging"
	"newsdesk/internal/recommend"
	"newsdesk/internal/store"
	"newsdesk/internal/testsupport"
)

// seedScoredExposure stores one content item published at publishedAt, tagged
// with a single keyword carrying the given weight in the category, and returns
// the exposure ID.
func seedScoredExposure(t *testing.T, st *store.Store, categoryID int64, idx int, weight float64, publishedAt time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	keyword := fmt.Sprintf("keyword-%d", idx)
	keywordID, err := st.UpsertKeyword(ctx, keyword)
	if err != nil {
		t.Fatalf("UpsertKeyword: %v", err)
	}
	if err := st.SetKeywordWeight(ctx, keywordID, categoryID, weight); err != nil {
		t.Fatalf("SetKeywordWeight: %v", err)
	}

	item, _, err := st.AddContent(ctx, &store.ContentItem{
		ExternalID:       fmt.Sprintf("item-%d", idx),
		Title:            fmt.Sprintf("Item %d", idx),
		Body:             "body",
		Source:           "https://example.com/feed",
		Link:             fmt.Sprintf("https://example.com/item-%d", idx),
		PublishedAt:      publishedAt,
		ProviderPriority: 1,
	})
	if err != nil {
		t.Fatalf("AddContent: %v", err)
	}

	exp, err := st.UpsertExposure(ctx, &store.Exposure{
		ContentID:          item.ID,
		ProvocativeKeyword: keyword,
		Headline:           fmt.Sprintf("Headline %d", idx),
		SummaryText:        "summary",
		Model:              "gemini-2.0-flash-lite",
	})
	if err != nil {
		t.Fatalf("UpsertExposure: %v", err)
	}
	if err := st.ReplaceContentKeywords(ctx, item.ID, []string{keyword}); err != nil {
		t.Fatalf("ReplaceContentKeywords: %v", err)
	}
	return exp.ID
}

func TestResolveDailyRanksTopEntriesDescending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	categoryID, err := st.UpsertCategory(ctx, "tech")
	if err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	if err := st.SetUserCategories(ctx, "user-1", []int64{categoryID}); err != nil {
		t.Fatalf("SetUserCategories: %v", err)
	}

	// Eight candidates with distinct weights 12..19; only the six highest fit.
	exposureByWeight := make(map[float64]int64, 8)
	for i := 0; i < 8; i++ {
		weight := float64(12 + i)
		exposureByWeight[weight] = seedScoredExposure(t, st, categoryID, i, weight, day)
	}

	resolver := recommend.NewResolver(st, logging.NewNop())
	archive, err := resolver.ResolveDaily(ctx, "user-1", day)
	if err != nil {
		t.Fatalf("ResolveDaily: %v", err)
	}

	if len(archive.ExposureIDs) != recommend.MaxArchiveSize {
		t.Fatalf("expected %d entries, got %d", recommend.MaxArchiveSize, len(archive.ExposureIDs))
	}
	for i, weight := range []float64{19, 18, 17, 16, 15, 14} {
		if archive.ExposureIDs[i] != exposureByWeight[weight] {
			t.Fatalf("position %d: expected exposure %d (weight %v), got %d",
				i, exposureByWeight[weight], weight, archive.ExposureIDs[i])
		}
	}
}

func TestResolveDailyIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	categoryID, err := st.UpsertCategory(ctx, "tech")
	if err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	if err := st.SetUserCategories(ctx, "user-1", []int64{categoryID}); err != nil {
		t.Fatalf("SetUserCategories: %v", err)
	}
	seedScoredExposure(t, st, categoryID, 0, 15, day)

	resolver := recommend.NewResolver(st, logging.NewNop())
	first, err := resolver.ResolveDaily(ctx, "user-1", day)
	if err != nil {
		t.Fatalf("first ResolveDaily: %v", err)
	}

	// Adding a stronger candidate afterwards must not change the stored result.
	seedScoredExposure(t, st, categoryID, 1, 50, day)

	second, err := resolver.ResolveDaily(ctx, "user-1", day)
	if err != nil {
		t.Fatalf("second ResolveDaily: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same archive ID, got %s then %s", first.ID, second.ID)
	}
	if len(second.ExposureIDs) != len(first.ExposureIDs) {
		t.Fatalf("entries changed between resolves: %v vs %v", first.ExposureIDs, second.ExposureIDs)
	}
	for i := range first.ExposureIDs {
		if second.ExposureIDs[i] != first.ExposureIDs[i] {
			t.Fatalf("entry %d changed: %d vs %d", i, first.ExposureIDs[i], second.ExposureIDs[i])
		}
	}
}

func TestResolveDailyExcludesPriorArchiveEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	day1 := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	categoryID, err := st.UpsertCategory(ctx, "tech")
	if err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	if err := st.SetUserCategories(ctx, "user-1", []int64{categoryID}); err != nil {
		t.Fatalf("SetUserCategories: %v", err)
	}

	exposureByWeight := make(map[float64]int64, 8)
	for i := 0; i < 8; i++ {
		weight := float64(12 + i)
		exposureByWeight[weight] = seedScoredExposure(t, st, categoryID, i, weight, day1)
	}

	resolver := recommend.NewResolver(st, logging.NewNop())
	first, err := resolver.ResolveDaily(ctx, "user-1", day1)
	if err != nil {
		t.Fatalf("day one ResolveDaily: %v", err)
	}
	if len(first.ExposureIDs) != recommend.MaxArchiveSize {
		t.Fatalf("day one: expected %d entries, got %d", recommend.MaxArchiveSize, len(first.ExposureIDs))
	}

	// Day two only the two leftovers remain, aged by one day: 13-10 then 12-10.
	second, err := resolver.ResolveDaily(ctx, "user-1", day2)
	if err != nil {
		t.Fatalf("day two ResolveDaily: %v", err)
	}
	want := []int64{exposureByWeight[13], exposureByWeight[12]}
	if len(second.ExposureIDs) != len(want) {
		t.Fatalf("day two: expected %d entries, got %v", len(want), second.ExposureIDs)
	}
	for i := range want {
		if second.ExposureIDs[i] != want[i] {
			t.Fatalf("day two entry %d: expected %d, got %d", i, want[i], second.ExposureIDs[i])
		}
	}
}

func TestResolveDailyFallsBackToAllCategories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	categoryID, err := st.UpsertCategory(ctx, "tech")
	if err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	seedScoredExposure(t, st, categoryID, 0, 15, day)

	// user-2 has no subscriptions, so every category applies.
	resolver := recommend.NewResolver(st, logging.NewNop())
	archive, err := resolver.ResolveDaily(ctx, "user-2", day)
	if err != nil {
		t.Fatalf("ResolveDaily: %v", err)
	}
	if len(archive.ExposureIDs) != 1 {
		t.Fatalf("expected 1 entry from the all-categories fallback, got %d", len(archive.ExposureIDs))
	}
}
