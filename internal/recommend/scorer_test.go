package recommend_test

import (
	"testing"
	"time"

	"newsdesk/internal/recommend"
)

func TestScore(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		weights     recommend.WeightSet
		publishedAt time.Time
		expect      float64
	}{
		{
			name:        "positive product fresh",
			weights:     recommend.WeightSet{Positive: []float64{2.0, 3.0}},
			publishedAt: now,
			expect:      6.0,
		},
		{
			name:        "freshness penalty drives to zero",
			weights:     recommend.WeightSet{Positive: []float64{2.0, 3.0}},
			publishedAt: now.AddDate(0, 0, -2),
			expect:      0.0,
		},
		{
			name:        "one day old",
			weights:     recommend.WeightSet{Positive: []float64{4.0, 3.0}},
			publishedAt: now.AddDate(0, 0, -1),
			expect:      2.0,
		},
		{
			name: "negatives subtract from boost",
			weights: recommend.WeightSet{
				Positive: []float64{5.0},
				Negative: []float64{-2.0},
			},
			publishedAt: now,
			expect:      3.0,
		},
		{
			name: "negatives clamp keyword score at zero",
			weights: recommend.WeightSet{
				Positive: []float64{2.0},
				Negative: []float64{-3.0},
			},
			publishedAt: now,
			expect:      0.0,
		},
		{
			name:        "no matched keywords",
			weights:     recommend.WeightSet{},
			publishedAt: now,
			expect:      0.0,
		},
		{
			name:        "future publish date gets no bonus",
			weights:     recommend.WeightSet{Positive: []float64{3.0}},
			publishedAt: now.AddDate(0, 0, 2),
			expect:      3.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := recommend.Score(tc.weights, tc.publishedAt, now)
			if got != tc.expect {
				t.Fatalf("Score = %v, want %v", got, tc.expect)
			}
		})
	}
}
