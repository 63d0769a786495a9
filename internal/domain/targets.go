package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Upper bounds on accepted body measurements after unit conversion.
const (
	MaxHeightCM = 300
	MaxWeightKG = 700
)

var activityMultipliers = map[string]float64{
	"sedentary":      1.2,
	"lightly_active": 1.375,
	"very_active":    1.725,
}

var goalFactors = map[string]float64{
	"lose_weight":     0.8,
	"maintain_weight": 1.0,
	"gain_weight":     1.15,
	"build_muscle":    1.1,
}

type macroRatio struct {
	protein, fat, carb float64
}

var dietRatios = map[string]macroRatio{
	"no_restrictions": {protein: 0.25, fat: 0.25, carb: 0.50},
	"vegetarian":      {protein: 0.20, fat: 0.30, carb: 0.50},
	"vegan":           {protein: 0.15, fat: 0.25, carb: 0.60},
	"keto":            {protein: 0.25, fat: 0.70, carb: 0.05},
}

// TargetsInput is the raw biometric input as received from a client.
type TargetsInput struct {
	Gender            string `json:"gender"`
	ActivityLevel     string `json:"activity_level"`
	HeightUnit        string `json:"height_unit"`
	HeightValue       Number `json:"height_value"`
	HeightInches      Number `json:"height_inches"`
	WeightUnit        string `json:"weight_unit"`
	WeightValue       Number `json:"weight_value"`
	DateOfBirth       string `json:"date_of_birth"`
	MainGoal          string `json:"main_goal"`
	DietaryPreference string `json:"dietary_preference"`
}

// Biometrics is validated input to the targets calculator.
type Biometrics struct {
	Gender            string
	ActivityLevel     string
	HeightUnit        string
	HeightValue       float64
	HeightInches      float64
	WeightUnit        string
	WeightValue       float64
	DateOfBirth       time.Time
	MainGoal          string
	DietaryPreference string
}

// DailyTargets are the computed per-day intake goals.
type DailyTargets struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

// ParseBiometrics validates numeric and date fields. Units are normalized
// to metric or imperial; other enumerated fields are passed through and
// unknown values fall back to defaults later.
func ParseBiometrics(in TargetsInput) (Biometrics, error) {
	b := Biometrics{
		Gender:            strings.ToLower(strings.TrimSpace(in.Gender)),
		ActivityLevel:     strings.TrimSpace(in.ActivityLevel),
		HeightUnit:        NormalizeUnit(in.HeightUnit),
		WeightUnit:        NormalizeUnit(in.WeightUnit),
		MainGoal:          strings.TrimSpace(in.MainGoal),
		DietaryPreference: strings.TrimSpace(in.DietaryPreference),
	}

	var err error
	if b.HeightValue, err = in.HeightValue.Float64(); err != nil {
		return Biometrics{}, Invalid("Invalid height value", "height_value must be a number")
	}
	if in.HeightInches.IsSet() {
		if b.HeightInches, err = in.HeightInches.Float64(); err != nil {
			return Biometrics{}, Invalid("Invalid height value", "height_inches must be a number")
		}
	}
	if b.WeightValue, err = in.WeightValue.Float64(); err != nil {
		return Biometrics{}, Invalid("Invalid weight value", "weight_value must be a number")
	}
	if b.HeightValue <= 0 || b.WeightValue <= 0 || b.HeightInches < 0 {
		return Biometrics{}, Invalid("Invalid biometrics", "height and weight must be positive")
	}
	if HeightToCM(b.HeightUnit, b.HeightValue, b.HeightInches) > MaxHeightCM {
		return Biometrics{}, Invalid("Invalid height value", fmt.Sprintf("height must not exceed %d cm", MaxHeightCM))
	}
	if WeightToKG(b.WeightUnit, b.WeightValue) > MaxWeightKG {
		return Biometrics{}, Invalid("Invalid weight value", fmt.Sprintf("weight must not exceed %d kg", MaxWeightKG))
	}
	if b.DateOfBirth, err = time.ParseInLocation(DateLayout, strings.TrimSpace(in.DateOfBirth), time.Local); err != nil {
		return Biometrics{}, Invalid("Invalid date format", "date_of_birth must be YYYY-MM-DD")
	}
	return b, nil
}

// AgeOn returns completed years between dob and asOf.
func AgeOn(dob, asOf time.Time) int {
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return age
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(b Biometrics, asOf time.Time) float64 {
	kg := WeightToKG(b.WeightUnit, b.WeightValue)
	cm := HeightToCM(b.HeightUnit, b.HeightValue, b.HeightInches)
	bmr := 10*kg + 6.25*cm - 5*float64(AgeOn(b.DateOfBirth, asOf))
	if b.Gender == "male" {
		return bmr + 5
	}
	return bmr - 161
}

// CalculateTargets computes calorie and macro targets for the given day.
func CalculateTargets(b Biometrics, asOf time.Time) DailyTargets {
	activity, ok := activityMultipliers[b.ActivityLevel]
	if !ok {
		activity = activityMultipliers["sedentary"]
	}
	goal, ok := goalFactors[b.MainGoal]
	if !ok {
		goal = 1.0
	}
	ratio, ok := dietRatios[b.DietaryPreference]
	if !ok {
		ratio = dietRatios["no_restrictions"]
	}

	kcal := BMR(b, asOf) * activity * goal
	kg := WeightToKG(b.WeightUnit, b.WeightValue)

	protein := math.Max(kg*proteinPerKG(b.MainGoal), kcal*ratio.protein/4)
	fats := kcal * ratio.fat / 9
	carbs := math.Max(0, (kcal-protein*4-fats*9)/4)

	return DailyTargets{
		Calories: int(Round(kcal, 0)),
		ProteinG: Round(protein, 1),
		CarbsG:   Round(carbs, 1),
		FatsG:    Round(fats, 1),
	}
}

func proteinPerKG(goal string) float64 {
	switch goal {
	case "lose_weight":
		return 2.0
	case "build_muscle":
		return 2.2
	default:
		return 1.6
	}
}
