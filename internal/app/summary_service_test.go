package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"macrolens/internal/app"
	"macrolens/internal/domain"
)

func profileWithTargets() *domain.UserProfile {
	return &domain.UserProfile{UserID: "u", DailyCalories: 2000, DailyProteinG: 150, DailyCarbsG: 200, DailyFatsG: 70}
}

func TestDailySummary(t *testing.T) {
	profiles := &mockProfileRepo{getFn: func(context.Context, string) (*domain.UserProfile, error) {
		return profileWithTargets(), nil
	}}
	foods := &mockFoodRepo{betweenFn: func(_ context.Context, _ string, start, _ time.Time, limit, _ int) ([]domain.ConsumedFood, error) {
		if start.Format(domain.DateLayout) != "2025-10-01" {
			t.Fatalf("unexpected window start: %v", start)
		}
		if limit != 0 {
			t.Fatalf("summary must read every record, got limit %d", limit)
		}
		return []domain.ConsumedFood{{Calories: 500, Protein: 30}}, nil
	}}

	got, err := app.NewSummaryService(foods, profiles).Daily(context.Background(), "u", "2025-10-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Remaining.Calories != 1500 || got.ProgressPercentage.Calories != 25 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.Status.CaloriesExceeded {
		t.Fatal("calories must not be exceeded")
	}
}

func TestDailySummary_DefaultsToToday(t *testing.T) {
	profiles := &mockProfileRepo{getFn: func(context.Context, string) (*domain.UserProfile, error) {
		return profileWithTargets(), nil
	}}
	got, err := app.NewSummaryService(&mockFoodRepo{}, profiles).Daily(context.Background(), "u", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Date != domain.LocalDay(time.Now()) {
		t.Fatalf("expected today, got %s", got.Date)
	}
}

func TestDailySummary_Errors(t *testing.T) {
	_, err := app.NewSummaryService(&mockFoodRepo{}, &mockProfileRepo{}).Daily(context.Background(), "u", "2025-10-01")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	profiles := &mockProfileRepo{getFn: func(context.Context, string) (*domain.UserProfile, error) {
		return profileWithTargets(), nil
	}}
	_, err = app.NewSummaryService(&mockFoodRepo{}, profiles).Daily(context.Background(), "u", "Oct 1")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	failing := &mockFoodRepo{betweenFn: func(context.Context, string, time.Time, time.Time, int, int) ([]domain.ConsumedFood, error) {
		return nil, errors.New("db down")
	}}
	_, err = app.NewSummaryService(failing, profiles).Daily(context.Background(), "u", "2025-10-01")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestWeeklySummary(t *testing.T) {
	profiles := &mockProfileRepo{getFn: func(context.Context, string) (*domain.UserProfile, error) {
		return profileWithTargets(), nil
	}}
	foods := &mockFoodRepo{betweenFn: func(context.Context, string, time.Time, time.Time, int, int) ([]domain.ConsumedFood, error) {
		return []domain.ConsumedFood{{Calories: 2100}}, nil
	}}

	got, err := app.NewSummaryService(foods, profiles).Weekly(context.Background(), "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Days) != domain.WeeklyDays {
		t.Fatalf("expected %d days, got %d", domain.WeeklyDays, len(got.Days))
	}
	today := domain.LocalDay(time.Now())
	if got.DateRange.EndDate != today {
		t.Fatalf("expected end date %s, got %s", today, got.DateRange.EndDate)
	}
	if day, ok := got.Days[today]; !ok || !day.Status.CaloriesExceeded {
		t.Fatalf("unexpected today summary: %+v", day)
	}
	if got.Goals.Calories != 2000 {
		t.Fatalf("unexpected goals: %+v", got.Goals)
	}
}
