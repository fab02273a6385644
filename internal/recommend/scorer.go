package recommend

import "time"

// freshnessPenaltyPerDay is the score subtracted per day of content age.
const freshnessPenaltyPerDay = 10.0

// WeightSet carries the matched keyword weights for one content item, split
// by sign.
type WeightSet struct {
	Positive []float64
	Negative []float64
}

// Score computes the ranking score for a content item from its matched
// keyword weights and publish date. Pure function, no side effects.
//
// Positive weights multiply into a boost product; negative weights multiply
// (sign-flipped) into a penalty product subtracted from the boost. An item
// with no negative matches keeps its full boost. Content age subtracts
// freshnessPenaltyPerDay per day; age is clamped at zero so future-dated
// content gets no bonus.
func Score(weights WeightSet, publishedAt, now time.Time) float64 {
	keywordScore := 0.0
	if len(weights.Positive) > 0 || len(weights.Negative) > 0 {
		positiveProduct := 1.0
		for _, w := range weights.Positive {
			positiveProduct *= w
		}
		keywordScore = positiveProduct
		if len(weights.Negative) > 0 {
			negativeProduct := 1.0
			for _, w := range weights.Negative {
				negativeProduct *= -w
			}
			keywordScore -= negativeProduct
		}
		if keywordScore < 0 {
			keywordScore = 0
		}
	}

	daysOld := daysBetween(publishedAt, now)
	if daysOld < 0 {
		daysOld = 0
	}
	freshnessScore := -freshnessPenaltyPerDay * float64(daysOld)

	final := keywordScore + freshnessScore
	if final < 0 {
		return 0
	}
	return final
}

func daysBetween(from, to time.Time) int {
	fromDay := from.UTC().Truncate(24 * time.Hour)
	toDay := to.UTC().Truncate(24 * time.Hour)
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
