package ingest

import (
	"testing"
	"time"
)

const rssDocument = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <item>
      <title> First story </title>
      <link>https://example.com/first</link>
      <guid>guid-first</guid>
      <description>First summary</description>
      <pubDate>Tue, 10 Mar 2026 09:30:00 +0000</pubDate>
    </item>
    <item>
      <title>No guid</title>
      <link>https://example.com/second</link>
      <description>Second summary</description>
    </item>
    <item>
      <title>No identity at all</title>
      <description>dropped</description>
    </item>
  </channel>
</rss>`

const atomDocument = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <entry>
    <title>Atom story</title>
    <id>tag:example.com,2026:entry-1</id>
    <link rel="self" href="https://example.com/self"/>
    <link rel="alternate" href="https://example.com/entry-1"/>
    <content>Full content body</content>
    <updated>2026-03-10T09:30:00Z</updated>
  </entry>
</feed>`

func TestParseFeedRSS(t *testing.T) {
	items, err := ParseFeed([]byte(rssDocument))
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (entry without identity dropped), got %d", len(items))
	}

	first := items[0]
	if first.Title != "First story" {
		t.Fatalf("title not trimmed: %q", first.Title)
	}
	if first.GUID != "guid-first" || first.Link != "https://example.com/first" {
		t.Fatalf("unexpected identity: %+v", first)
	}
	want := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Fatalf("published = %v, want %v", first.Published, want)
	}

	second := items[1]
	if second.GUID != "https://example.com/second" {
		t.Fatalf("missing guid must fall back to link, got %q", second.GUID)
	}
	if !second.Published.IsZero() {
		t.Fatalf("absent pubDate should yield zero time, got %v", second.Published)
	}
}

func TestParseFeedAtom(t *testing.T) {
	items, err := ParseFeed([]byte(atomDocument))
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	entry := items[0]
	if entry.GUID != "tag:example.com,2026:entry-1" {
		t.Fatalf("unexpected guid: %q", entry.GUID)
	}
	if entry.Link != "https://example.com/entry-1" {
		t.Fatalf("alternate link must win over self, got %q", entry.Link)
	}
	if entry.Summary != "Full content body" {
		t.Fatalf("empty summary must fall back to content, got %q", entry.Summary)
	}
	want := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	if !entry.Published.Equal(want) {
		t.Fatalf("missing published must fall back to updated, got %v", entry.Published)
	}
}

func TestParseFeedRejectsUnknownFormat(t *testing.T) {
	if _, err := ParseFeed([]byte("<html><body>not a feed</body></html>")); err == nil {
		t.Fatal("expected error for unrecognized document")
	}
}

func TestParseFeedTimeLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"Tue, 10 Mar 2026 09:30:00 +0200", time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)},
		{"Tue, 10 Mar 2026 09:30:00 GMT", time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)},
		{"2026-03-10T09:30:00Z", time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)},
		{"2026-03-10", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		got := parseFeedTime(tt.raw)
		if !got.Equal(tt.want) {
			t.Errorf("parseFeedTime(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
