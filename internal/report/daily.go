// Package report builds the daily and weekly report payloads and renders
// notifications for email, push and terminal output.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/notexe/fittrack/internal/tracker"
)

// Fallback targets for profiles created without them.
const (
	DefaultTargetCalories = 2000
	DefaultWaterIntake    = 2.5
)

// GoalStatus summarizes how the day went relative to the profile goal.
type GoalStatus struct {
	Class   string `json:"class"` // success or warning
	Message string `json:"message"`
}

// Daily is the payload of the daily report.
type Daily struct {
	Date             string                  `json:"date"`
	ISODate          string                  `json:"isoDate"`
	CaloriesConsumed int                     `json:"caloriesConsumed"`
	CaloriesBurned   int                     `json:"caloriesBurned"`
	WaterDrunk       float64                 `json:"waterDrunk"`
	HabitsCompleted  tracker.HabitsCompleted `json:"habitsCompleted"`
	Foods            []tracker.FoodEntry     `json:"foods"`
	Exercises        []tracker.ExerciseEntry `json:"exercises"`
	TargetCalories   int                     `json:"targetCalories"`
	WaterIntake      float64                 `json:"waterIntake"`
	Goal             string                  `json:"goal"`
	NetCalories      int                     `json:"netCalories"`
	CalorieProgress  int                     `json:"calorieProgress"`
	WaterProgress    int                     `json:"waterProgress"`
	HabitScore       int                     `json:"habitScore"`
	Status           GoalStatus              `json:"goalStatus"`
	Focus            []string                `json:"focus"`
}

// BuildDaily computes the daily report for profile p from record rec.
func BuildDaily(p *tracker.Profile, rec *tracker.DailyRecord) *Daily {
	target, water := targets(p)

	d := &Daily{
		Date:             humanDate(rec.Date),
		ISODate:          rec.Date,
		CaloriesConsumed: rec.CaloriesConsumed,
		CaloriesBurned:   rec.CaloriesBurned,
		WaterDrunk:       rec.WaterDrunk,
		HabitsCompleted:  rec.HabitsCompleted,
		Foods:            rec.Foods,
		Exercises:        rec.Exercises,
		TargetCalories:   target,
		WaterIntake:      water,
		Goal:             p.Goal,
		NetCalories:      rec.CaloriesConsumed - rec.CaloriesBurned,
		CalorieProgress:  Percent(float64(rec.CaloriesConsumed), float64(target)),
		WaterProgress:    Percent(rec.WaterDrunk, water),
		HabitScore:       rec.HabitsCompleted.Score(),
	}
	if d.HabitsCompleted.Positive == nil {
		d.HabitsCompleted.Positive = []string{}
	}
	if d.HabitsCompleted.Negative == nil {
		d.HabitsCompleted.Negative = []string{}
	}

	d.Status = Status(p.Goal, d.NetCalories, target)
	d.Focus = focus(d)

	return d
}

// Percent returns part/whole as a rounded percentage. A zero whole yields 0.
func Percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}

// Status returns the goal status for the net calories of a day.
func Status(goal string, net, target int) GoalStatus {
	diff := net - target

	switch goal {
	case tracker.GoalCut:
		if diff < 0 {
			return GoalStatus{"success", fmt.Sprintf("Great job! You're in a calorie deficit of %d calories, perfect for weight loss!", -diff)}
		}
		return GoalStatus{"warning", fmt.Sprintf("You're %d calories over your target. Try to increase exercise or reduce intake tomorrow.", diff)}
	case tracker.GoalBulk:
		if diff > 0 {
			return GoalStatus{"success", fmt.Sprintf("Excellent! You're in a calorie surplus of %d calories, great for muscle building!", diff)}
		}
		return GoalStatus{"warning", fmt.Sprintf("You're %d calories under your target. Consider eating more to support muscle growth.", -diff)}
	default:
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		if abs < 100 {
			return GoalStatus{"success", fmt.Sprintf("Perfect! You're maintaining your calorie balance within %d calories of your target.", abs)}
		}
		dir := "under"
		if diff > 0 {
			dir = "over"
		}
		return GoalStatus{"warning", fmt.Sprintf("You're %d calories %s your maintenance target.", abs, dir)}
	}
}

func focus(d *Daily) []string {
	var out []string
	if d.CalorieProgress < 80 {
		out = append(out, "Increase calorie intake to meet your daily goal")
	}
	if d.WaterProgress < 80 {
		out = append(out, "Drink more water throughout the day")
	}
	if d.CaloriesBurned < 200 {
		out = append(out, "Add more physical activity to burn calories")
	}
	if d.HabitScore < 0 {
		out = append(out, "Focus on completing positive habits and avoiding negative ones")
	}
	return append(out, "Keep up the great work and stay consistent!")
}

func targets(p *tracker.Profile) (int, float64) {
	target := p.TargetCalories
	if target <= 0 {
		target = DefaultTargetCalories
	}
	water := p.WaterIntake
	if water <= 0 {
		water = DefaultWaterIntake
	}
	return target, water
}

func humanDate(iso string) string {
	t, err := time.Parse(tracker.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("Monday, January 2, 2006")
}
