// Package tracker stores profiles, habits and daily activity records.
package tracker

import (
	"fmt"
	"math"
	"strings"
)

var activityMultipliers = map[string]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// TargetCalories returns the daily calorie target for the given body
// measurements, using the Harris-Benedict BMR and adjusting by 500 kcal
// for cut and bulk goals.
func TargetCalories(weight, height float64, age int, activity, goal string) int {
	bmr := 88.362 + 13.397*weight + 4.799*height - 5.677*float64(age)

	multiplier, ok := activityMultipliers[activity]
	if !ok {
		multiplier = activityMultipliers[ActivityModerate]
	}
	target := bmr * multiplier

	switch goal {
	case GoalCut:
		target -= 500
	case GoalBulk:
		target += 500
	}

	return int(math.Round(target))
}

// WaterIntake returns the daily water target in liters: 35 ml per kg,
// rounded to one decimal.
func WaterIntake(weight float64) float64 {
	return math.Round(weight*35/1000*10) / 10
}

// Validate checks the profile input and fills in defaults for goal and
// activity level.
func (in *ProfileInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if in.Age <= 0 || in.Height <= 0 || in.Weight <= 0 {
		return fmt.Errorf("age, height and weight must be positive")
	}

	if in.Goal == "" {
		in.Goal = GoalMaintenance
	}
	switch in.Goal {
	case GoalCut, GoalBulk, GoalMaintenance:
	default:
		return fmt.Errorf("unknown goal %q (use %s, %s or %s)", in.Goal, GoalCut, GoalBulk, GoalMaintenance)
	}

	if in.ActivityLevel == "" {
		in.ActivityLevel = ActivityModerate
	}
	if _, ok := activityMultipliers[in.ActivityLevel]; !ok {
		return fmt.Errorf("unknown activity level %q", in.ActivityLevel)
	}

	return nil
}

// Burn rates in kcal per minute, matched by substring in this order.
var burnRates = []struct {
	match string
	rate  float64
}{
	{"running", 10},
	{"walking", 5},
	{"cycling", 8},
	{"swimming", 12},
	{"weightlifting", 6},
	{"yoga", 3},
	{"cardio", 8},
	{"strength", 6},
}

const defaultBurnRate = 7

// EstimateBurn estimates the calories burned by an exercise from its name
// and duration in minutes.
func EstimateBurn(name string, minutes int) int {
	rate := float64(defaultBurnRate)
	name = strings.ToLower(name)
	for _, r := range burnRates {
		if strings.Contains(name, r.match) {
			rate = r.rate
			break
		}
	}
	return int(math.Round(rate * float64(minutes)))
}
