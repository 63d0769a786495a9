package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"macrolens/internal/domain"
)

// StreakService tracks consecutive goal-met days.
type StreakService struct {
	profiles domain.ProfileRepository
	streaks  domain.StreakRepository
	log      *zap.Logger
}

// NewStreakService creates a StreakService.
func NewStreakService(profiles domain.ProfileRepository, streaks domain.StreakRepository, log *zap.Logger) *StreakService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StreakService{profiles: profiles, streaks: streaks, log: log}
}

// StreakInfo is the streak read model.
type StreakInfo struct {
	CurrentStreak    int        `json:"current_streak"`
	DailyCalorieGoal float64    `json:"daily_calorie_goal"`
	LastUpdated      *time.Time `json:"last_updated"`
	StreakHistory    []string   `json:"streak_history"`
}

// Update records that the caller met their goal today and returns the new
// streak. A second call on the same day fails with a conflict.
func (s *StreakService) Update(ctx context.Context, userID string) (int, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	next, err := domain.StreakState{Streak: p.Streak, UpdatedAt: p.StreakUpdatedAt}.Advance(now)
	if err != nil {
		return p.Streak, err
	}

	dayStart, _, err := domain.DayBounds(domain.LocalDay(now))
	if err != nil {
		return 0, err
	}
	changed, err := s.profiles.AdvanceStreak(ctx, userID, next.Streak, now, dayStart)
	if err != nil {
		return 0, domain.Upstream("Failed to update streak", err)
	}
	if !changed {
		// A concurrent request won the same day.
		return p.Streak, domain.ErrStreakAlreadyUpdated
	}

	if err := s.streaks.AddStreakEvent(ctx, userID, domain.LocalDay(now), now); err != nil {
		s.log.Warn("could not record streak event", zap.String("user_id", userID), zap.Error(err))
	}
	return next.Streak, nil
}

// Get returns the current streak and the event history of the last
// domain.StreakHistoryDays days, newest first.
func (s *StreakService) Get(ctx context.Context, userID string) (*StreakInfo, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := domain.LocalDay(now.AddDate(0, 0, -domain.StreakHistoryDays))
	days, err := s.streaks.ListStreakDays(ctx, userID, from, domain.LocalDay(now))
	if err != nil {
		return nil, domain.Upstream("Failed to fetch streak history", err)
	}
	if days == nil {
		days = []string{}
	}
	return &StreakInfo{
		CurrentStreak:    p.Streak,
		DailyCalorieGoal: domain.Round(float64(p.DailyCalories), 2),
		LastUpdated:      p.StreakUpdatedAt,
		StreakHistory:    days,
	}, nil
}

func (s *StreakService) profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, domain.Upstream("Failed to load profile", err)
	}
	if p == nil {
		return nil, domain.NotFound("User profile not found", "Please complete your profile setup first")
	}
	return p, nil
}
