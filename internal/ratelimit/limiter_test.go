package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"newsdesk/internal/logging"
	"newsdesk/internal/ratelimit"
	"newsdesk/internal/services/gemini"
	"newsdesk/internal/store"
	"newsdesk/internal/testsupport"
)

func TestAdmitDeniesWhenMinuteBudgetSpent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	model := gemini.ModelDescriptor{Name: "test-model", RPMLimit: 3, RPDLimit: 100}
	limiter := ratelimit.NewLimiter(st, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < model.RPMLimit; i++ {
		decision, err := limiter.Admit(ctx, model)
		if err != nil {
			t.Fatalf("Admit %d: %v", i, err)
		}
		if decision != ratelimit.Admitted {
			t.Fatalf("Admit %d: expected Admitted, got %s", i, decision)
		}
	}

	decision, err := limiter.Admit(ctx, model)
	if err != nil {
		t.Fatalf("Admit over budget: %v", err)
	}
	if decision != ratelimit.DeniedRPM {
		t.Fatalf("expected DeniedRPM once the bucket drains, got %s", decision)
	}
}

func TestAdmitDeniesWhenDailyBudgetSpent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	model := gemini.ModelDescriptor{Name: "test-model", RPMLimit: 1000, RPDLimit: 2}
	limiter := ratelimit.NewLimiter(st, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < model.RPDLimit; i++ {
		decision, err := limiter.Admit(ctx, model)
		if err != nil {
			t.Fatalf("Admit %d: %v", i, err)
		}
		if decision != ratelimit.Admitted {
			t.Fatalf("Admit %d: expected Admitted, got %s", i, decision)
		}
	}

	decision, err := limiter.Admit(ctx, model)
	if err != nil {
		t.Fatalf("Admit over budget: %v", err)
	}
	if decision != ratelimit.DeniedRPD {
		t.Fatalf("expected DeniedRPD once the daily counter fills, got %s", decision)
	}
}

func TestDailyCounterNeverExceedsMaxUnderConcurrency(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	const maxPerDay = 10
	const attempts = 40
	model := gemini.ModelDescriptor{Name: "test-model", RPMLimit: 10_000, RPDLimit: maxPerDay}
	limiter := ratelimit.NewLimiter(st, logging.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Admit(ctx, model)
			if err != nil {
				t.Errorf("Admit: %v", err)
				return
			}
			if decision == ratelimit.Admitted {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != maxPerDay {
		t.Fatalf("expected exactly %d admissions, got %d", maxPerDay, admitted)
	}

	day := store.DayKey(time.Now())
	counter, err := st.FindOrCreateRateLimit(ctx, model.Name, day, maxPerDay)
	if err != nil {
		t.Fatalf("FindOrCreateRateLimit: %v", err)
	}
	if counter.RequestCount != maxPerDay {
		t.Fatalf("expected counter at %d, got %d", maxPerDay, counter.RequestCount)
	}
}

func TestAdmitKeepsCountersPerDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	model := gemini.ModelDescriptor{Name: "test-model", RPMLimit: 1000, RPDLimit: 1}
	day1 := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	current := day1

	limiter := ratelimit.NewLimiter(st, logging.NewNop(), ratelimit.WithClock(func() time.Time {
		return current
	}))
	ctx := context.Background()

	if decision, err := limiter.Admit(ctx, model); err != nil || decision != ratelimit.Admitted {
		t.Fatalf("day one first admit: decision=%v err=%v", decision, err)
	}
	if decision, err := limiter.Admit(ctx, model); err != nil || decision != ratelimit.DeniedRPD {
		t.Fatalf("day one second admit: decision=%v err=%v", decision, err)
	}

	// The daily budget resets with the calendar day.
	current = day2
	if decision, err := limiter.Admit(ctx, model); err != nil || decision != ratelimit.Admitted {
		t.Fatalf("day two admit: decision=%v err=%v", decision, err)
	}
}
