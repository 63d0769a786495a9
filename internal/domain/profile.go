// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

// UserProfile holds onboarding answers, biometrics and computed targets.
type UserProfile struct {
	UserID              string     `json:"user_id"`
	Gender              string     `json:"gender"`
	ActivityLevel       string     `json:"activity_level"`
	TrackingDifficulty  string     `json:"tracking_difficulty"`
	ExperienceLevel     string     `json:"experience_level"`
	HeightUnit          string     `json:"height_unit"`
	HeightValue         float64    `json:"height_value"`
	HeightInches        *float64   `json:"height_inches"`
	WeightUnit          string     `json:"weight_unit"`
	WeightValue         float64    `json:"weight_value"`
	DateOfBirth         string     `json:"date_of_birth"`
	MainGoal            string     `json:"main_goal"`
	DietaryPreference   string     `json:"dietary_preference"`
	DailyCalories       int        `json:"daily_calories"`
	DailyProteinG       float64    `json:"daily_protein_g"`
	DailyCarbsG         float64    `json:"daily_carbs_g"`
	DailyFatsG          float64    `json:"daily_fats_g"`
	Streak              int        `json:"streak"`
	StreakUpdatedAt     *time.Time `json:"streak_update_date"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Targets returns the stored daily targets.
func (p *UserProfile) Targets() DailyTargets {
	return DailyTargets{
		Calories: p.DailyCalories,
		ProteinG: p.DailyProteinG,
		CarbsG:   p.DailyCarbsG,
		FatsG:    p.DailyFatsG,
	}
}

// SetTargets overwrites the stored daily targets.
func (p *UserProfile) SetTargets(t DailyTargets) {
	p.DailyCalories = t.Calories
	p.DailyProteinG = t.ProteinG
	p.DailyCarbsG = t.CarbsG
	p.DailyFatsG = t.FatsG
}

// Biometrics rebuilds calculator input from stored profile values.
func (p *UserProfile) Biometrics() (Biometrics, error) {
	in := TargetsInput{
		Gender:            p.Gender,
		ActivityLevel:     p.ActivityLevel,
		HeightUnit:        p.HeightUnit,
		HeightValue:       NumberFrom(p.HeightValue),
		WeightUnit:        p.WeightUnit,
		WeightValue:       NumberFrom(p.WeightValue),
		DateOfBirth:       p.DateOfBirth,
		MainGoal:          p.MainGoal,
		DietaryPreference: p.DietaryPreference,
	}
	if p.HeightInches != nil {
		in.HeightInches = NumberFrom(*p.HeightInches)
	}
	return ParseBiometrics(in)
}

// ProfileRepository is the port for profile persistence. Lookups return
// (nil, nil) when the user has no profile.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	// UpsertProfile inserts or replaces the profile and reports whether a
	// new row was created.
	UpsertProfile(ctx context.Context, p *UserProfile) (*UserProfile, bool, error)
	UpdateTargets(ctx context.Context, userID string, t DailyTargets, at time.Time) (*UserProfile, error)
	// AdvanceStreak stores a new streak value only if the stored update time
	// is absent or earlier than notBefore. It reports whether a row changed.
	AdvanceStreak(ctx context.Context, userID string, streak int, at, notBefore time.Time) (bool, error)
}
