package domain

import "time"

// WeeklyDays is the number of days covered by the weekly summary, today
// included.
const WeeklyDays = 5

// Macros is a calorie and macronutrient tuple.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// GoalsFromTargets converts stored targets to Macros.
func GoalsFromTargets(t DailyTargets) Macros {
	return Macros{
		Calories: float64(t.Calories),
		Protein:  t.ProteinG,
		Carbs:    t.CarbsG,
		Fats:     t.FatsG,
	}
}

func (m Macros) round(places int32) Macros {
	return Macros{
		Calories: Round(m.Calories, places),
		Protein:  Round(m.Protein, places),
		Carbs:    Round(m.Carbs, places),
		Fats:     Round(m.Fats, places),
	}
}

// GoalsStatus flags each macro whose consumption is above its goal.
type GoalsStatus struct {
	CaloriesExceeded bool `json:"calories_exceeded"`
	ProteinExceeded  bool `json:"protein_exceeded"`
	CarbsExceeded    bool `json:"carbs_exceeded"`
	FatsExceeded     bool `json:"fats_exceeded"`
}

// DailySummary is consumption versus goals for one calendar day.
type DailySummary struct {
	Date               string      `json:"date"`
	Consumed           Macros      `json:"consumed_today"`
	Goals              Macros      `json:"daily_goals"`
	Remaining          Macros      `json:"remaining_to_goal"`
	ProgressPercentage Macros      `json:"progress_percentage"`
	FoodsCount         int         `json:"foods_consumed_count"`
	Status             GoalsStatus `json:"goals_status"`
}

// DateRange bounds a multi-day summary.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// WeeklySummary holds a DailySummary per ISO date.
type WeeklySummary struct {
	Days      map[string]DailySummary `json:"weekly_data"`
	Goals     Macros                  `json:"daily_goals"`
	DateRange DateRange               `json:"date_range"`
}

// SumFoods totals the nutritional fields of foods. Portion is not applied:
// stored values are treated as already reflecting the eaten amount.
func SumFoods(foods []ConsumedFood) Macros {
	var m Macros
	for _, f := range foods {
		m.Calories += f.Calories
		m.Protein += f.Protein
		m.Carbs += f.Carbs
		m.Fats += f.Fats
	}
	return m
}

// Summarize compares a day's foods against goals.
func Summarize(date string, foods []ConsumedFood, goals Macros) DailySummary {
	consumed := SumFoods(foods)
	return DailySummary{
		Date:     date,
		Consumed: consumed.round(2),
		Goals:    goals.round(2),
		Remaining: Macros{
			Calories: goals.Calories - consumed.Calories,
			Protein:  goals.Protein - consumed.Protein,
			Carbs:    goals.Carbs - consumed.Carbs,
			Fats:     goals.Fats - consumed.Fats,
		}.round(2),
		ProgressPercentage: Macros{
			Calories: percentOf(consumed.Calories, goals.Calories),
			Protein:  percentOf(consumed.Protein, goals.Protein),
			Carbs:    percentOf(consumed.Carbs, goals.Carbs),
			Fats:     percentOf(consumed.Fats, goals.Fats),
		}.round(1),
		FoodsCount: len(foods),
		Status: GoalsStatus{
			CaloriesExceeded: consumed.Calories > goals.Calories,
			ProteinExceeded:  consumed.Protein > goals.Protein,
			CarbsExceeded:    consumed.Carbs > goals.Carbs,
			FatsExceeded:     consumed.Fats > goals.Fats,
		},
	}
}

func percentOf(v, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return v / goal * 100
}

// DayBounds returns the half-open [start, end) window of a local calendar day.
func DayBounds(day string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateLayout, day, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, Invalid("Invalid date format", "date must be YYYY-MM-DD")
	}
	return start, start.AddDate(0, 0, 1), nil
}

// LocalDay formats t as a local calendar date.
func LocalDay(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// RecentDays returns n local dates ending with today, oldest first.
func RecentDays(today time.Time, n int) []string {
	out := make([]string, 0, n)
	local := today.In(time.Local)
	for i := n - 1; i >= 0; i-- {
		out = append(out, local.AddDate(0, 0, -i).Format(DateLayout))
	}
	return out
}
