package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"macrolens/internal/domain"
)

const profileColumns = `user_id, gender, activity_level, tracking_difficulty, experience_level,
	height_unit, height_value, height_inches, weight_unit, weight_value, date_of_birth,
	main_goal, dietary_preference, daily_calories, daily_protein_g, daily_carbs_g, daily_fats_g,
	streak, streak_update_date, onboarding_completed, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.UserProfile, error) {
	var (
		p       domain.UserProfile
		inches  sql.NullFloat64
		updated sql.NullTime
	)
	err := row.Scan(
		&p.UserID, &p.Gender, &p.ActivityLevel, &p.TrackingDifficulty, &p.ExperienceLevel,
		&p.HeightUnit, &p.HeightValue, &inches, &p.WeightUnit, &p.WeightValue, &p.DateOfBirth,
		&p.MainGoal, &p.DietaryPreference, &p.DailyCalories, &p.DailyProteinG, &p.DailyCarbsG, &p.DailyFatsG,
		&p.Streak, &updated, &p.OnboardingCompleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if inches.Valid {
		v := inches.Float64
		p.HeightInches = &v
	}
	if updated.Valid {
		t := updated.Time
		p.StreakUpdatedAt = &t
	}
	return &p, nil
}

// GetProfile returns the profile of userID, or nil if none exists.
func (d *DB) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id=$1;", userID)
	return scanProfile(row)
}

// UpsertProfile inserts or replaces onboarding data and targets. Streak
// columns and created_at are left untouched on conflict.
func (d *DB) UpsertProfile(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error) {
	now := time.Now().UTC()
	var inches sql.NullFloat64
	if p.HeightInches != nil {
		inches = sql.NullFloat64{Float64: *p.HeightInches, Valid: true}
	}

	var created bool
	row := d.sql.QueryRowContext(ctx, `
		INSERT INTO profiles(user_id, gender, activity_level, tracking_difficulty, experience_level,
			height_unit, height_value, height_inches, weight_unit, weight_value, date_of_birth,
			main_goal, dietary_preference, daily_calories, daily_protein_g, daily_carbs_g, daily_fats_g,
			onboarding_completed, created_at, updated_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$19)
		ON CONFLICT (user_id) DO UPDATE SET
			gender=EXCLUDED.gender,
			activity_level=EXCLUDED.activity_level,
			tracking_difficulty=EXCLUDED.tracking_difficulty,
			experience_level=EXCLUDED.experience_level,
			height_unit=EXCLUDED.height_unit,
			height_value=EXCLUDED.height_value,
			height_inches=EXCLUDED.height_inches,
			weight_unit=EXCLUDED.weight_unit,
			weight_value=EXCLUDED.weight_value,
			date_of_birth=EXCLUDED.date_of_birth,
			main_goal=EXCLUDED.main_goal,
			dietary_preference=EXCLUDED.dietary_preference,
			daily_calories=EXCLUDED.daily_calories,
			daily_protein_g=EXCLUDED.daily_protein_g,
			daily_carbs_g=EXCLUDED.daily_carbs_g,
			daily_fats_g=EXCLUDED.daily_fats_g,
			onboarding_completed=EXCLUDED.onboarding_completed,
			updated_at=EXCLUDED.updated_at
		RETURNING (xmax = 0);`,
		p.UserID, p.Gender, p.ActivityLevel, p.TrackingDifficulty, p.ExperienceLevel,
		p.HeightUnit, p.HeightValue, inches, p.WeightUnit, p.WeightValue, p.DateOfBirth,
		p.MainGoal, p.DietaryPreference, p.DailyCalories, p.DailyProteinG, p.DailyCarbsG, p.DailyFatsG,
		p.OnboardingCompleted, now,
	)
	if err := row.Scan(&created); err != nil {
		return nil, false, err
	}
	saved, err := d.GetProfile(ctx, p.UserID)
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

// UpdateTargets overwrites the stored daily targets.
func (d *DB) UpdateTargets(ctx context.Context, userID string, t domain.DailyTargets, at time.Time) (*domain.UserProfile, error) {
	row := d.sql.QueryRowContext(ctx, `
		UPDATE profiles SET daily_calories=$2, daily_protein_g=$3, daily_carbs_g=$4, daily_fats_g=$5, updated_at=$6
		WHERE user_id=$1
		RETURNING `+profileColumns+";",
		userID, t.Calories, t.ProteinG, t.CarbsG, t.FatsG, at.UTC(),
	)
	return scanProfile(row)
}

// AdvanceStreak sets the streak unless it was already updated at or after notBefore.
func (d *DB) AdvanceStreak(ctx context.Context, userID string, streak int, at, notBefore time.Time) (bool, error) {
	res, err := d.sql.ExecContext(ctx, `
		UPDATE profiles SET streak=$2, streak_update_date=$3, updated_at=$3
		WHERE user_id=$1 AND (streak_update_date IS NULL OR streak_update_date < $4);`,
		userID, streak, at.UTC(), notBefore.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
