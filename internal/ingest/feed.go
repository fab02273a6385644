package ingest

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// FeedItem is one normalized entry from an RSS or Atom feed.
type FeedItem struct {
	Title     string
	Link      string
	GUID      string
	Summary   string
	Published time.Time
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	ID        string     `xml:"id"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// ParseFeed decodes an RSS 2.0 or Atom document into normalized items.
func ParseFeed(data []byte) ([]FeedItem, error) {
	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return normalizeRSS(rss), nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		return normalizeAtom(atom), nil
	}

	return nil, fmt.Errorf("unrecognized feed format")
}

func normalizeRSS(feed rssFeed) []FeedItem {
	items := make([]FeedItem, 0, len(feed.Channel.Items))
	for _, entry := range feed.Channel.Items {
		item := FeedItem{
			Title:     strings.TrimSpace(entry.Title),
			Link:      strings.TrimSpace(entry.Link),
			GUID:      strings.TrimSpace(entry.GUID),
			Summary:   strings.TrimSpace(entry.Description),
			Published: parseFeedTime(entry.PubDate),
		}
		if item.GUID == "" {
			item.GUID = item.Link
		}
		if item.GUID == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func normalizeAtom(feed atomFeed) []FeedItem {
	items := make([]FeedItem, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		summary := strings.TrimSpace(entry.Summary)
		if summary == "" {
			summary = strings.TrimSpace(entry.Content)
		}
		published := entry.Published
		if strings.TrimSpace(published) == "" {
			published = entry.Updated
		}
		item := FeedItem{
			Title:     strings.TrimSpace(entry.Title),
			Link:      pickAtomLink(entry.Links),
			GUID:      strings.TrimSpace(entry.ID),
			Summary:   summary,
			Published: parseFeedTime(published),
		}
		if item.GUID == "" {
			item.GUID = item.Link
		}
		if item.GUID == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func pickAtomLink(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02",
}

func parseFeedTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range feedTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
