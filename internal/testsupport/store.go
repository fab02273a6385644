package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewContent inserts a content item for tests using the provided store. The
// external ID doubles as the title so fixtures stay readable.
func NewContent(t testing.TB, st *store.Store, externalID, body string) *store.ContentItem {
	t.Helper()

	item, _, err := st.AddContent(context.Background(), &store.ContentItem{
		ExternalID:       externalID,
		Title:            externalID,
		Body:             body,
		Source:           "https://example.com/feed",
		Link:             fmt.Sprintf("https://example.com/%s", externalID),
		PublishedAt:      time.Now().UTC(),
		ProviderPriority: 1,
	})
	if err != nil {
		t.Fatalf("store.AddContent: %v", err)
	}
	return item
}
