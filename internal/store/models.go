package store

import "time"

// ContentItem is an ingested newsletter/RSS entry awaiting or past AI processing.
// Immutable once created apart from the updated_at bookkeeping column.
type ContentItem struct {
	ID               int64
	ExternalID       string
	Title            string
	Body             string
	LengthChars      int
	Source           string
	Link             string
	PublishedAt      time.Time
	ProviderPriority int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Exposure is the user-facing rendering of a processed content item. At most
// one exists per content item.
type Exposure struct {
	ID                 int64
	ContentID          int64
	ProvocativeKeyword string
	Headline           string
	SummaryText        string
	Model              string
	CreatedAt          time.Time
}

// RateLimitCounter tracks per-model request spend for one calendar day.
type RateLimitCounter struct {
	Model        string
	Day          string
	RequestCount int
	MaxPerDay    int
}

// Category groups keywords into a user-selectable topic.
type Category struct {
	ID   int64
	Name string
}

// KeywordWeight is a signed scalar attached to a keyword within a category.
// Positive boosts, negative penalizes.
type KeywordWeight struct {
	KeywordID  int64
	Keyword    string
	CategoryID int64
	Weight     float64
}

// ArchiveSnapshot records the inputs that produced a daily archive.
type ArchiveSnapshot struct {
	UserID      string  `json:"user_id"`
	CategoryIDs []int64 `json:"category_ids"`
	KeywordIDs  []int64 `json:"keyword_ids"`
}

// DailyArchive is an immutable per-user-per-day ranking result.
type DailyArchive struct {
	ID          string
	UserID      string
	Day         string
	Snapshot    ArchiveSnapshot
	ExposureIDs []int64
	CreatedAt   time.Time
}

// Candidate pairs an exposure with the content fields the recommendation
// scorer needs.
type Candidate struct {
	ExposureID  int64
	ContentID   int64
	PublishedAt time.Time
}

// DayKey formats a time as the calendar-day key used by rate limit counters
// and daily archives.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
