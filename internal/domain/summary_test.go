package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrolens/internal/domain"
)

func TestSummarize_UnderGoal(t *testing.T) {
	foods := []domain.ConsumedFood{{Calories: 500, Protein: 30, Carbs: 40, Fats: 10, Portion: 2}}
	goals := domain.Macros{Calories: 2000, Protein: 150, Carbs: 200, Fats: 70}

	got := domain.Summarize("2025-10-01", foods, goals)

	assert.Equal(t, 500.0, got.Consumed.Calories, "portion must not be applied")
	assert.Equal(t, 1500.0, got.Remaining.Calories)
	assert.Equal(t, 25.0, got.ProgressPercentage.Calories)
	assert.Equal(t, 20.0, got.ProgressPercentage.Protein)
	assert.False(t, got.Status.CaloriesExceeded)
	assert.Equal(t, 1, got.FoodsCount)
}

func TestSummarize_Exceeded(t *testing.T) {
	foods := []domain.ConsumedFood{
		{Calories: 1500, Protein: 80, Carbs: 100, Fats: 50},
		{Calories: 700.125, Protein: 90, Carbs: 20, Fats: 30},
	}
	goals := domain.Macros{Calories: 2000, Protein: 150, Carbs: 200, Fats: 70}

	got := domain.Summarize("2025-10-01", foods, goals)

	assert.Equal(t, 2200.13, got.Consumed.Calories)
	assert.Equal(t, -200.13, got.Remaining.Calories)
	assert.Equal(t, 110.0, got.ProgressPercentage.Calories)
	assert.True(t, got.Status.CaloriesExceeded)
	assert.True(t, got.Status.ProteinExceeded)
	assert.False(t, got.Status.CarbsExceeded)
	assert.True(t, got.Status.FatsExceeded)
}

func TestSummarize_ZeroGoal(t *testing.T) {
	foods := []domain.ConsumedFood{{Calories: 300, Protein: 10}}
	got := domain.Summarize("2025-10-01", foods, domain.Macros{})

	assert.Equal(t, 0.0, got.ProgressPercentage.Calories)
	assert.Equal(t, 0.0, got.ProgressPercentage.Protein)
	assert.True(t, got.Status.CaloriesExceeded)
}

func TestSummarize_Empty(t *testing.T) {
	goals := domain.Macros{Calories: 1800}
	got := domain.Summarize("2025-10-01", nil, goals)

	assert.Equal(t, 0, got.FoodsCount)
	assert.Equal(t, 1800.0, got.Remaining.Calories)
	assert.False(t, got.Status.CaloriesExceeded)
}

func TestSummarize_NonFiniteRowDoesNotPanic(t *testing.T) {
	foods := []domain.ConsumedFood{{Calories: math.Inf(1), Protein: math.NaN(), Carbs: 10}}
	goals := domain.Macros{Calories: 2000, Protein: 150, Carbs: 200, Fats: 70}

	var got domain.DailySummary
	require.NotPanics(t, func() { got = domain.Summarize("2025-10-01", foods, goals) })
	assert.Equal(t, 10.0, got.Consumed.Carbs)
	assert.Equal(t, 0.0, got.Consumed.Calories)
}

func TestDayBounds(t *testing.T) {
	start, end, err := domain.DayBounds("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", start.Format(domain.DateLayout))
	assert.Equal(t, "2025-03-10", end.Format(domain.DateLayout))
	assert.Equal(t, 0, end.Hour())

	_, _, err = domain.DayBounds("yesterday")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecentDays(t *testing.T) {
	today := time.Date(2025, 3, 2, 12, 0, 0, 0, time.Local)
	got := domain.RecentDays(today, domain.WeeklyDays)
	assert.Equal(t, []string{"2025-02-26", "2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, got)
}
