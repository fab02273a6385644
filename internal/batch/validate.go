package batch

import "newsdesk/internal/store"

const (
	// BatchSize is the maximum number of items selected per run.
	BatchSize = 5
	// MaxItemChars is the per-item body size ceiling; larger items are dropped.
	MaxItemChars = 10_000
	// MaxBatchChars caps the combined body size of one AI call.
	MaxBatchChars = 50_000
)

// ValidateSizes applies the deterministic, order-preserving size policy: items
// whose body exceeds MaxItemChars are dropped outright, then the survivors are
// walked in original order accumulating a running total. The first item whose
// inclusion would push the total past MaxBatchChars truncates the batch: it
// and everything after it are excluded.
func ValidateSizes(items []*store.ContentItem) (accepted, excluded []*store.ContentItem) {
	withinItemLimit := make([]*store.ContentItem, 0, len(items))
	for _, item := range items {
		if itemLength(item) > MaxItemChars {
			excluded = append(excluded, item)
			continue
		}
		withinItemLimit = append(withinItemLimit, item)
	}

	total := 0
	for i, item := range withinItemLimit {
		if total+itemLength(item) > MaxBatchChars {
			excluded = append(excluded, withinItemLimit[i:]...)
			break
		}
		total += itemLength(item)
		accepted = append(accepted, item)
	}
	return accepted, excluded
}

func itemLength(item *store.ContentItem) int {
	if item.LengthChars > 0 {
		return item.LengthChars
	}
	return len([]rune(item.Body))
}
