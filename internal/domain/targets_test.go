package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrolens/internal/domain"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(domain.DateLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func baseInput() domain.TargetsInput {
	return domain.TargetsInput{
		Gender:            "male",
		ActivityLevel:     "lightly_active",
		HeightUnit:        "metric",
		HeightValue:       "180",
		WeightUnit:        "metric",
		WeightValue:       "75",
		DateOfBirth:       "1990-05-15",
		MainGoal:          "build_muscle",
		DietaryPreference: "no_restrictions",
	}
}

func TestAgeOn(t *testing.T) {
	dob := day("1990-05-15")
	assert.Equal(t, 35, domain.AgeOn(dob, day("2025-10-01")))
	assert.Equal(t, 34, domain.AgeOn(dob, day("2025-05-14")))
	assert.Equal(t, 35, domain.AgeOn(dob, day("2025-05-15")))
	assert.Equal(t, 34, domain.AgeOn(dob, day("2025-04-30")))
}

func TestCalculateTargets_MaleBuildMuscle(t *testing.T) {
	b, err := domain.ParseBiometrics(baseInput())
	require.NoError(t, err)

	asOf := day("2025-10-01")
	assert.InDelta(t, 1705.0, domain.BMR(b, asOf), 1e-9)

	got := domain.CalculateTargets(b, asOf)
	assert.Equal(t, 2579, got.Calories)
	assert.Equal(t, 165.0, got.ProteinG)
	assert.Equal(t, 71.6, got.FatsG)
	assert.Equal(t, 318.5, got.CarbsG)
}

func TestCalculateTargets_FemaleAndOtherShareOffset(t *testing.T) {
	in := baseInput()
	in.Gender = "female"
	female, err := domain.ParseBiometrics(in)
	require.NoError(t, err)
	in.Gender = "other"
	other, err := domain.ParseBiometrics(in)
	require.NoError(t, err)

	asOf := day("2025-10-01")
	assert.InDelta(t, 1539.0, domain.BMR(female, asOf), 1e-9)
	assert.Equal(t, domain.CalculateTargets(female, asOf), domain.CalculateTargets(other, asOf))
}

func TestCalculateTargets_Imperial(t *testing.T) {
	in := baseInput()
	in.HeightUnit = "imperial"
	in.HeightValue = "5"
	in.HeightInches = "6"
	in.WeightUnit = "imperial"
	in.WeightValue = "140"
	b, err := domain.ParseBiometrics(in)
	require.NoError(t, err)

	asOf := day("2025-10-01")
	want := 10*140*0.453592 + 6.25*167.64 - 5*35 + 5
	assert.InDelta(t, want, domain.BMR(b, asOf), 1e-6)
}

func TestCalculateTargets_Properties(t *testing.T) {
	asOf := day("2025-10-01")
	goals := []string{"lose_weight", "maintain_weight", "gain_weight", "build_muscle", "unknown"}
	diets := []string{"no_restrictions", "vegetarian", "vegan", "keto", "carnivore"}
	floors := map[string]float64{"lose_weight": 2.0, "build_muscle": 2.2}

	for _, goal := range goals {
		for _, diet := range diets {
			in := baseInput()
			in.MainGoal = goal
			in.DietaryPreference = diet
			b, err := domain.ParseBiometrics(in)
			require.NoError(t, err)
			got := domain.CalculateTargets(b, asOf)

			floor, ok := floors[goal]
			if !ok {
				floor = 1.6
			}
			assert.GreaterOrEqual(t, got.ProteinG, domain.Round(75*floor, 1), "%s/%s protein floor", goal, diet)
			assert.GreaterOrEqual(t, got.CarbsG, 0.0, "%s/%s carbs", goal, diet)

			// Energy only balances when carbs were not clamped at zero.
			if got.CarbsG > 0 {
				energy := 4*got.ProteinG + 4*got.CarbsG + 9*got.FatsG
				assert.LessOrEqual(t, math.Abs(energy-float64(got.Calories)), 2.0, "%s/%s energy", goal, diet)
			}
		}
	}
}

func TestCalculateTargets_UnknownEnumsUseDefaults(t *testing.T) {
	asOf := day("2025-10-01")
	in := baseInput()
	in.ActivityLevel = "sedentary"
	in.MainGoal = "maintain_weight"
	in.DietaryPreference = "no_restrictions"
	known, err := domain.ParseBiometrics(in)
	require.NoError(t, err)

	in.ActivityLevel = "couch"
	in.MainGoal = "???"
	in.DietaryPreference = "paleo"
	unknown, err := domain.ParseBiometrics(in)
	require.NoError(t, err)

	assert.Equal(t, domain.CalculateTargets(known, asOf), domain.CalculateTargets(unknown, asOf))
}

func TestParseBiometrics_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TargetsInput)
	}{
		{"bad height", func(in *domain.TargetsInput) { in.HeightValue = "tall" }},
		{"missing height", func(in *domain.TargetsInput) { in.HeightValue = "" }},
		{"bad weight", func(in *domain.TargetsInput) { in.WeightValue = "heavy" }},
		{"bad inches", func(in *domain.TargetsInput) { in.HeightInches = "six" }},
		{"negative weight", func(in *domain.TargetsInput) { in.WeightValue = "-70" }},
		{"bad dob", func(in *domain.TargetsInput) { in.DateOfBirth = "15/05/1990" }},
		{"empty dob", func(in *domain.TargetsInput) { in.DateOfBirth = "" }},
		{"NaN height", func(in *domain.TargetsInput) { in.HeightValue = "NaN" }},
		{"infinite height", func(in *domain.TargetsInput) { in.HeightValue = "Inf" }},
		{"overflowing height", func(in *domain.TargetsInput) { in.HeightValue = "1e400" }},
		{"huge height", func(in *domain.TargetsInput) { in.HeightValue = "1e308" }},
		{"NaN weight", func(in *domain.TargetsInput) { in.WeightValue = "NaN" }},
		{"negative infinite inches", func(in *domain.TargetsInput) { in.HeightInches = "-Inf" }},
		{"imperial weight over bound", func(in *domain.TargetsInput) {
			in.WeightUnit = "imperial"
			in.WeightValue = "2000"
		}},
		{"metric height over bound", func(in *domain.TargetsInput) { in.HeightValue = "301" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mutate(&in)
			_, err := domain.ParseBiometrics(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestParseBiometrics_NormalizesUnits(t *testing.T) {
	tests := []struct {
		unit string
		want string
	}{
		{"metric", domain.UnitMetric},
		{"cm", domain.UnitMetric},
		{"", domain.UnitMetric},
		{"Imperial", domain.UnitImperial},
		{" imperial ", domain.UnitImperial},
	}
	for _, tc := range tests {
		t.Run(tc.unit, func(t *testing.T) {
			in := baseInput()
			in.HeightUnit = tc.unit
			in.WeightUnit = tc.unit
			in.HeightValue = "5"
			in.WeightValue = "150"
			b, err := domain.ParseBiometrics(in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, b.HeightUnit)
			assert.Equal(t, tc.want, b.WeightUnit)
		})
	}
}
