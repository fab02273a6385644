package gemini

import (
	"fmt"
	"strings"
)

// AnalysisSystemPrompt instructs the model to emit the fixed single-item
// analysis schema.
const AnalysisSystemPrompt = `You analyze newsletter and RSS articles for a content curation service.
Respond with JSON only, no prose, using exactly this schema:
{"summary": string, "provocativeHeadlines": string[], "matchedKeywords": string[], "suggestedKeywords": string[], "provocativeKeywords": string[]}
- summary: 3-5 sentence neutral summary of the article.
- provocativeHeadlines: 2-3 attention-grabbing but accurate headlines.
- matchedKeywords: the subset of the provided keyword list that genuinely applies to the article.
- suggestedKeywords: up to 5 new keywords not in the provided list.
- provocativeKeywords: 1-3 short punchy tags suitable as badges.`

// BatchSystemPrompt instructs the model to emit one analysis entry per
// supplied article, keyed by contentId.
const BatchSystemPrompt = `You analyze newsletter and RSS articles for a content curation service.
Several articles are provided, each with a numeric contentId.
Respond with JSON only, no prose, using exactly this schema:
{"items": [{"contentId": number, "summary": string, "provocativeHeadlines": string[], "matchedKeywords": string[], "suggestedKeywords": string[], "provocativeKeywords": string[]}]}
Produce exactly one entry per provided article and copy its contentId verbatim.
Field meanings match the single-article schema: summary is a 3-5 sentence neutral
summary, matchedKeywords is the applicable subset of the provided keyword list,
suggestedKeywords are up to 5 new keywords, provocativeKeywords are 1-3 short tags.`

// PromptItem is the per-article input handed to the prompt builders.
type PromptItem struct {
	ContentID int64
	Title     string
	Body      string
}

// BuildItemPrompt renders the user prompt for a single-article analysis call.
func BuildItemPrompt(item PromptItem, keywords []string) string {
	var b strings.Builder
	writeKeywordBlock(&b, keywords)
	b.WriteString("Article:\n")
	writeItem(&b, item)
	return b.String()
}

// BuildBatchPrompt renders the user prompt for a combined batch call.
func BuildBatchPrompt(items []PromptItem, keywords []string) string {
	var b strings.Builder
	writeKeywordBlock(&b, keywords)
	fmt.Fprintf(&b, "Articles (%d):\n", len(items))
	for _, item := range items {
		writeItem(&b, item)
	}
	return b.String()
}

func writeKeywordBlock(b *strings.Builder, keywords []string) {
	if len(keywords) == 0 {
		b.WriteString("Keyword list: (none)\n\n")
		return
	}
	b.WriteString("Keyword list: ")
	b.WriteString(strings.Join(keywords, ", "))
	b.WriteString("\n\n")
}

func writeItem(b *strings.Builder, item PromptItem) {
	fmt.Fprintf(b, "--- contentId: %d ---\n", item.ContentID)
	fmt.Fprintf(b, "Title: %s\n", strings.TrimSpace(item.Title))
	b.WriteString(strings.TrimSpace(item.Body))
	b.WriteString("\n\n")
}
