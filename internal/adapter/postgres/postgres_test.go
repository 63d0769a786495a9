package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrolens/internal/app"
	"macrolens/internal/domain"
)

// openTestDB connects to TEST_DATABASE_URL or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProfileRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := uuid.NewString()

	inches := 10.0
	p := &domain.UserProfile{
		UserID: userID, Gender: "male", ActivityLevel: "sedentary",
		HeightUnit: "imperial", HeightValue: 5, HeightInches: &inches,
		WeightUnit: "metric", WeightValue: 80, DateOfBirth: "1990-01-01",
		MainGoal: "maintain", DietaryPreference: "no_restrictions",
		DailyCalories: 2200, OnboardingCompleted: true,
	}
	saved, created, err := db.UpsertProfile(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, saved.HeightInches)
	assert.Equal(t, 10.0, *saved.HeightInches)

	now := time.Now()
	ok, err := db.AdvanceStreak(ctx, userID, 1, now, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.AdvanceStreak(ctx, userID, 2, now, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "second advance in the same window must not apply")

	p.DailyCalories = 2400
	saved, created, err = db.UpsertProfile(ctx, p)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 2400, saved.DailyCalories)
	assert.Equal(t, 1, saved.Streak)

	updated, err := db.UpdateTargets(ctx, userID, domain.DailyTargets{Calories: 1900, ProteinG: 150}, now)
	require.NoError(t, err)
	assert.Equal(t, 1900, updated.DailyCalories)

	missing, err := db.GetProfile(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFoodRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := uuid.NewString()
	day := time.Date(2025, 10, 1, 12, 0, 0, 0, time.Local)

	added, err := db.AddFood(ctx, domain.ConsumedFood{UserID: userID, Name: "rice", Emoji: "🍚", Calories: 200, CreatedAt: day})
	require.NoError(t, err)
	assert.Equal(t, 1.0, added.Portion)
	_, err = db.AddFood(ctx, domain.ConsumedFood{UserID: userID, Name: "later", Emoji: "🍎", CreatedAt: day.Add(time.Hour)})
	require.NoError(t, err)

	start, end, err := domain.DayBounds("2025-10-01")
	require.NoError(t, err)
	foods, err := db.ListFoodsBetween(ctx, userID, start, end, 0, 0)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "later", foods[0].Name)

	name := "brown rice"
	upd, err := db.UpdateFood(ctx, userID, added.ID, domain.FoodPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "brown rice", upd.Name)
	assert.Equal(t, 200.0, upd.Calories)

	other, err := db.GetFood(ctx, uuid.NewString(), added.ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	ok, err := db.DeleteFood(ctx, userID, added.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := db.ListFoods(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStreakEvents(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := uuid.NewString()

	for _, d := range []string{"2025-10-01", "2025-10-02", "2025-10-02"} {
		require.NoError(t, db.AddStreakEvent(ctx, userID, d, time.Now()))
	}
	days, err := db.ListStreakDays(ctx, userID, "2025-09-01", "2025-10-31")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-02", "2025-10-01"}, days)
}

func TestSaveProfile_UnitsSatisfySchema(t *testing.T) {
	db := openTestDB(t)
	svc := app.NewProfileService(db)

	in := app.ProfileInput{
		TargetsInput: domain.TargetsInput{
			Gender: "female", ActivityLevel: "sedentary",
			HeightUnit: "cm", HeightValue: "165",
			WeightUnit: "kg", WeightValue: "60",
			DateOfBirth: "1992-03-04", MainGoal: "maintain_weight", DietaryPreference: "vegan",
		},
		TrackingDifficulty: "easy",
		ExperienceLevel:    "beginner",
	}
	saved, created, err := svc.Save(context.Background(), uuid.NewString(), in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.UnitMetric, saved.HeightUnit)
	assert.Equal(t, domain.UnitMetric, saved.WeightUnit)
}
