package report

import (
	"math"

	"github.com/notexe/fittrack/internal/tracker"
)

// DayStats is one row of the weekly summary.
type DayStats struct {
	Date             string  `json:"date"`
	CaloriesConsumed int     `json:"caloriesConsumed"`
	CaloriesBurned   int     `json:"caloriesBurned"`
	WaterDrunk       float64 `json:"waterDrunk"`
	HabitScore       int     `json:"habitsScore"`
	CalorieProgress  int     `json:"calorieProgress"`
}

// Averages holds the weekly per-day averages.
type Averages struct {
	Calories float64 `json:"calories"`
	Water    float64 `json:"water"`
	Exercise float64 `json:"exercise"`
	Habits   float64 `json:"habits"`
}

// Weekly is the payload of the weekly summary.
type Weekly struct {
	From            string     `json:"from"`
	To              string     `json:"to"`
	Days            []DayStats `json:"days"`
	Averages        Averages   `json:"averages"`
	TotalCalories   int        `json:"totalCalories"`
	TotalBurned     int        `json:"totalBurned"`
	TotalWater      float64    `json:"totalWater"`
	TotalHabitScore int        `json:"totalHabitScore"`
	DaysOnTarget    int        `json:"daysOnTarget"`
	BestDay         string     `json:"bestDay,omitempty"`
	TargetCalories  int        `json:"targetCalories"`
	WaterIntake     float64    `json:"waterIntake"`
	Goal            string     `json:"goal"`
}

// BuildWeekly summarizes days (oldest first) for profile p. Calorie and
// exercise averages are rounded to whole numbers, water and habit averages
// to one decimal.
func BuildWeekly(p *tracker.Profile, days []tracker.DailyRecord) *Weekly {
	target, water := targets(p)

	w := &Weekly{
		Days:           make([]DayStats, 0, len(days)),
		TargetCalories: target,
		WaterIntake:    water,
		Goal:           p.Goal,
	}
	if len(days) == 0 {
		return w
	}
	w.From = days[0].Date
	w.To = days[len(days)-1].Date

	bestScore := math.Inf(-1)
	for _, d := range days {
		score := d.HabitsCompleted.Score()
		row := DayStats{
			Date:             d.Date,
			CaloriesConsumed: d.CaloriesConsumed,
			CaloriesBurned:   d.CaloriesBurned,
			WaterDrunk:       d.WaterDrunk,
			HabitScore:       score,
			CalorieProgress:  Percent(float64(d.CaloriesConsumed), float64(target)),
		}
		w.Days = append(w.Days, row)

		w.TotalCalories += d.CaloriesConsumed
		w.TotalBurned += d.CaloriesBurned
		w.TotalWater += d.WaterDrunk
		w.TotalHabitScore += score

		if Status(p.Goal, d.CaloriesConsumed-d.CaloriesBurned, target).Class == "success" && d.CaloriesConsumed > 0 {
			w.DaysOnTarget++
		}

		// Best day: highest combined progress, ties go to the earlier day.
		dayScore := float64(row.CalorieProgress) + float64(Percent(d.WaterDrunk, water)) + float64(score*10)
		if d.CaloriesConsumed > 0 || d.WaterDrunk > 0 {
			if dayScore > bestScore {
				bestScore = dayScore
				w.BestDay = d.Date
			}
		}
	}

	n := float64(len(days))
	w.Averages = Averages{
		Calories: math.Round(float64(w.TotalCalories) / n),
		Water:    round1(w.TotalWater / n),
		Exercise: math.Round(float64(w.TotalBurned) / n),
		Habits:   round1(float64(w.TotalHabitScore) / n),
	}
	w.TotalWater = round1(w.TotalWater)

	return w
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
