package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsdesk/internal/store"
	"newsdesk/internal/testsupport"
)

func contentFixture(externalID string) *store.ContentItem {
	return &store.ContentItem{
		ExternalID:       externalID,
		Title:            "Title " + externalID,
		Body:             "Body for " + externalID,
		Source:           "https://example.com/feed",
		Link:             "https://example.com/" + externalID,
		PublishedAt:      time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
		ProviderPriority: 1,
	}
}

func TestAddContentDeduplicatesByExternalID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, inserted, err := st.AddContent(ctx, contentFixture("guid-1"))
	if err != nil {
		t.Fatalf("AddContent: %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report inserted")
	}
	if first.LengthChars != len([]rune(first.Body)) {
		t.Fatalf("length chars not derived from body: %d", first.LengthChars)
	}

	second, inserted, err := st.AddContent(ctx, contentFixture("guid-1"))
	if err != nil {
		t.Fatalf("AddContent duplicate: %v", err)
	}
	if inserted {
		t.Fatal("duplicate insert should not report inserted")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate must return the original row, got %d and %d", first.ID, second.ID)
	}

	count, err := st.ContentCount(ctx)
	if err != nil {
		t.Fatalf("ContentCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored item, got %d", count)
	}
}

func TestFetchUnprocessedExcludesExposedContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewContent(t, st, "guid-a", "body a")
	testsupport.NewContent(t, st, "guid-b", "body b")

	if _, err := st.UpsertExposure(ctx, &store.Exposure{
		ContentID:          a.ID,
		ProvocativeKeyword: "general",
		Headline:           "done",
		SummaryText:        "done",
	}); err != nil {
		t.Fatalf("UpsertExposure: %v", err)
	}

	items, err := st.FetchUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnprocessed: %v", err)
	}
	if len(items) != 1 || items[0].ExternalID != "guid-b" {
		t.Fatalf("expected only the unexposed item, got %+v", items)
	}

	remaining, err := st.CountUnprocessed(ctx)
	if err != nil {
		t.Fatalf("CountUnprocessed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected one unprocessed item, got %d", remaining)
	}
}

func TestFetchUnprocessedOrdersByPriorityThenRecency(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	older := contentFixture("low-priority")
	older.ProviderPriority = 2
	newerSecondary := contentFixture("newer-secondary")
	newerSecondary.ProviderPriority = 2
	newerSecondary.PublishedAt = older.PublishedAt.Add(2 * time.Hour)
	primary := contentFixture("primary")
	primary.ProviderPriority = 1

	for _, item := range []*store.ContentItem{older, newerSecondary, primary} {
		if _, _, err := st.AddContent(ctx, item); err != nil {
			t.Fatalf("AddContent: %v", err)
		}
	}

	items, err := st.FetchUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnprocessed: %v", err)
	}
	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.ExternalID)
	}
	want := []string{"primary", "newer-secondary", "low-priority"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestUpsertExposureReplacesOnConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewContent(t, st, "guid-1", "body")

	first, err := st.UpsertExposure(ctx, &store.Exposure{
		ContentID:          item.ID,
		ProvocativeKeyword: "general",
		Headline:           "first",
		SummaryText:        "first summary",
	})
	if err != nil {
		t.Fatalf("first UpsertExposure: %v", err)
	}

	second, err := st.UpsertExposure(ctx, &store.Exposure{
		ContentID:          item.ID,
		ProvocativeKeyword: "scandal",
		Headline:           "second",
		SummaryText:        "second summary",
		Model:              "gemini-2.0-flash",
	})
	if err != nil {
		t.Fatalf("second UpsertExposure: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert must keep one row per content, got ids %d and %d", first.ID, second.ID)
	}

	loaded, err := st.ExposureByContent(ctx, item.ID)
	if err != nil {
		t.Fatalf("ExposureByContent: %v", err)
	}
	if loaded == nil || loaded.Headline != "second" || loaded.Model != "gemini-2.0-flash" {
		t.Fatalf("conflict update not applied: %+v", loaded)
	}

	count, err := st.ExposureCount(ctx)
	if err != nil {
		t.Fatalf("ExposureCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single exposure row, got %d", count)
	}
}

func TestConditionalIncrementStopsAtMax(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	day := store.DayKey(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))
	counter, err := st.FindOrCreateRateLimit(ctx, "gemini-2.5-pro", day, 3)
	if err != nil {
		t.Fatalf("FindOrCreateRateLimit: %v", err)
	}
	if counter.RequestCount != 0 || counter.MaxPerDay != 3 {
		t.Fatalf("fresh counter should be empty: %+v", counter)
	}

	for i := 0; i < 3; i++ {
		ok, err := st.ConditionalIncrement(ctx, "gemini-2.5-pro", day)
		if err != nil {
			t.Fatalf("ConditionalIncrement %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("increment %d should succeed", i)
		}
	}

	ok, err := st.ConditionalIncrement(ctx, "gemini-2.5-pro", day)
	if err != nil {
		t.Fatalf("ConditionalIncrement over max: %v", err)
	}
	if ok {
		t.Fatal("increment past max_per_day must fail")
	}

	counter, err = st.FindOrCreateRateLimit(ctx, "gemini-2.5-pro", day, 3)
	if err != nil {
		t.Fatalf("re-read counter: %v", err)
	}
	if counter.RequestCount != 3 {
		t.Fatalf("counter must stop at max, got %d", counter.RequestCount)
	}
}

func TestPruneRateLimits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	oldDay := "2026-01-05"
	newDay := "2026-03-10"
	if _, err := st.FindOrCreateRateLimit(ctx, "gemini-2.0-flash", oldDay, 10); err != nil {
		t.Fatalf("seed old counter: %v", err)
	}
	if _, err := st.FindOrCreateRateLimit(ctx, "gemini-2.0-flash", newDay, 10); err != nil {
		t.Fatalf("seed new counter: %v", err)
	}

	pruned, err := st.PruneRateLimits(ctx, "2026-02-01")
	if err != nil {
		t.Fatalf("PruneRateLimits: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected one pruned counter, got %d", pruned)
	}
}

func TestCreateArchiveEnforcesPerUserPerDayUniqueness(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewContent(t, st, "guid-1", "body")
	exp, err := st.UpsertExposure(ctx, &store.Exposure{
		ContentID:          item.ID,
		ProvocativeKeyword: "general",
		Headline:           "headline",
		SummaryText:        "summary",
	})
	if err != nil {
		t.Fatalf("UpsertExposure: %v", err)
	}

	archive := &store.DailyArchive{
		ID:     "archive-1",
		UserID: "user-1",
		Day:    "2026-03-10",
		Snapshot: store.ArchiveSnapshot{
			UserID:      "user-1",
			CategoryIDs: []int64{1},
			KeywordIDs:  []int64{2},
		},
		ExposureIDs: []int64{exp.ID},
	}
	if err := st.CreateArchive(ctx, archive); err != nil {
		t.Fatalf("CreateArchive: %v", err)
	}

	duplicate := &store.DailyArchive{
		ID:          "archive-2",
		UserID:      "user-1",
		Day:         "2026-03-10",
		Snapshot:    archive.Snapshot,
		ExposureIDs: []int64{exp.ID},
	}
	if err := st.CreateArchive(ctx, duplicate); !errors.Is(err, store.ErrArchiveExists) {
		t.Fatalf("expected ErrArchiveExists, got %v", err)
	}

	loaded, err := st.FindArchive(ctx, "user-1", "2026-03-10")
	if err != nil {
		t.Fatalf("FindArchive: %v", err)
	}
	if loaded == nil || loaded.ID != "archive-1" {
		t.Fatalf("winner row must survive, got %+v", loaded)
	}
	if len(loaded.ExposureIDs) != 1 || loaded.ExposureIDs[0] != exp.ID {
		t.Fatalf("archive entries not restored: %v", loaded.ExposureIDs)
	}
	if loaded.Snapshot.UserID != "user-1" || len(loaded.Snapshot.CategoryIDs) != 1 {
		t.Fatalf("snapshot not restored: %+v", loaded.Snapshot)
	}

	missing, err := st.FindArchive(ctx, "user-1", "2026-03-11")
	if err != nil {
		t.Fatalf("FindArchive missing day: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for absent archive, got %+v", missing)
	}
}

func TestReplaceContentKeywordsBuildsVocabulary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewContent(t, st, "guid-1", "body")

	if err := st.ReplaceContentKeywords(ctx, item.ID, []string{"ai", "security"}); err != nil {
		t.Fatalf("ReplaceContentKeywords: %v", err)
	}
	if err := st.ReplaceContentKeywords(ctx, item.ID, []string{"ai", "policy"}); err != nil {
		t.Fatalf("second ReplaceContentKeywords: %v", err)
	}

	ids, err := st.ContentKeywordIDs(ctx, item.ID)
	if err != nil {
		t.Fatalf("ContentKeywordIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("replace must drop stale links, got %d ids", len(ids))
	}

	vocab, err := st.Keywords(ctx)
	if err != nil {
		t.Fatalf("Keywords: %v", err)
	}
	// The vocabulary keeps every keyword ever seen, links are per content.
	if len(vocab) != 3 {
		t.Fatalf("expected vocabulary of 3, got %v", vocab)
	}
}

func TestExposuresByIDsPreservesRequestedOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var ids []int64
	for _, guid := range []string{"a", "b", "c"} {
		item := testsupport.NewContent(t, st, guid, "body "+guid)
		exp, err := st.UpsertExposure(ctx, &store.Exposure{
			ContentID:          item.ID,
			ProvocativeKeyword: "general",
			Headline:           "headline " + guid,
			SummaryText:        "summary",
		})
		if err != nil {
			t.Fatalf("UpsertExposure: %v", err)
		}
		ids = append(ids, exp.ID)
	}

	reversed := []int64{ids[2], ids[0], ids[1]}
	exposures, err := st.ExposuresByIDs(ctx, reversed)
	if err != nil {
		t.Fatalf("ExposuresByIDs: %v", err)
	}
	if len(exposures) != 3 {
		t.Fatalf("expected 3 exposures, got %d", len(exposures))
	}
	for i, exp := range exposures {
		if exp.ID != reversed[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, reversed[i], exp.ID)
		}
	}
}
