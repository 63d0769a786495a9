package app

import (
	"context"
	"time"

	"macrolens/internal/domain"
)

// SummaryService aggregates logged foods against a user's daily targets.
type SummaryService struct {
	foods    domain.FoodRepository
	profiles domain.ProfileRepository
}

// NewSummaryService creates a SummaryService backed by the given repositories.
func NewSummaryService(foods domain.FoodRepository, profiles domain.ProfileRepository) *SummaryService {
	return &SummaryService{foods: foods, profiles: profiles}
}

// Daily summarizes one local calendar day. An empty day means today.
func (s *SummaryService) Daily(ctx context.Context, userID, day string) (*domain.DailySummary, error) {
	if day == "" {
		day = domain.LocalDay(time.Now())
	}
	goals, err := s.goals(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum, err := s.summarize(ctx, userID, day, goals)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Weekly summarizes today and the preceding days, keyed by ISO date.
func (s *SummaryService) Weekly(ctx context.Context, userID string) (*domain.WeeklySummary, error) {
	goals, err := s.goals(ctx, userID)
	if err != nil {
		return nil, err
	}

	days := domain.RecentDays(time.Now(), domain.WeeklyDays)
	out := &domain.WeeklySummary{
		Days:      make(map[string]domain.DailySummary, len(days)),
		Goals:     goals,
		DateRange: domain.DateRange{StartDate: days[0], EndDate: days[len(days)-1]},
	}
	for _, day := range days {
		sum, err := s.summarize(ctx, userID, day, goals)
		if err != nil {
			return nil, err
		}
		out.Days[day] = sum
	}
	return out, nil
}

func (s *SummaryService) goals(ctx context.Context, userID string) (domain.Macros, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.Macros{}, domain.Upstream("Failed to load profile", err)
	}
	if p == nil {
		return domain.Macros{}, domain.NotFound("User profile not found", "Please complete your profile setup first")
	}
	return domain.GoalsFromTargets(p.Targets()), nil
}

func (s *SummaryService) summarize(ctx context.Context, userID, day string, goals domain.Macros) (domain.DailySummary, error) {
	start, end, err := domain.DayBounds(day)
	if err != nil {
		return domain.DailySummary{}, err
	}
	foods, err := s.foods.ListFoodsBetween(ctx, userID, start, end, 0, 0)
	if err != nil {
		return domain.DailySummary{}, domain.Upstream("Failed to fetch food records", err)
	}
	return domain.Summarize(day, foods, goals), nil
}
