package tracker

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a profile, habit or daily record does not exist.
var ErrNotFound = errors.New("not found")

// Goals a profile can train for.
const (
	GoalCut         = "cut"
	GoalBulk        = "bulk"
	GoalMaintenance = "maintenance"
)

// Activity levels used for the calorie target.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "veryActive"
)

// Habit kinds.
const (
	HabitPositive = "positive"
	HabitNegative = "negative"
)

// DateLayout is the ISO date format daily records are keyed by.
const DateLayout = "2006-01-02"

// Profile is a user of the tracker.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Height         float64   `json:"height"`
	Weight         float64   `json:"weight"`
	Goal           string    `json:"goal"`
	ActivityLevel  string    `json:"activityLevel"`
	TargetCalories int       `json:"targetCalories"`
	WaterIntake    float64   `json:"waterIntake"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActive     time.Time `json:"lastActive"`
}

// ProfileInput holds the user-supplied fields of a new profile. Targets are
// derived from it.
type ProfileInput struct {
	Name          string
	Email         string
	Age           int
	Height        float64
	Weight        float64
	Goal          string
	ActivityLevel string
}

// FoodEntry is one logged food.
type FoodEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	Quantity  float64   `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// ExerciseEntry is one logged exercise.
type ExerciseEntry struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Duration       int       `json:"duration"`
	CaloriesBurned int       `json:"caloriesBurned"`
	Timestamp      time.Time `json:"timestamp"`
}

// HabitsCompleted lists the habit IDs completed on a day.
type HabitsCompleted struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// Score is positive completions minus negative ones.
func (h HabitsCompleted) Score() int {
	return len(h.Positive) - len(h.Negative)
}

// Habit is a tracked habit definition.
type Habit struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyRecord aggregates one day of activity for a profile.
type DailyRecord struct {
	Date             string          `json:"date"`
	CaloriesConsumed int             `json:"caloriesConsumed"`
	CaloriesBurned   int             `json:"caloriesBurned"`
	WaterDrunk       float64         `json:"waterDrunk"`
	HabitsCompleted  HabitsCompleted `json:"habitsCompleted"`
	Foods            []FoodEntry     `json:"foods"`
	Exercises        []ExerciseEntry `json:"exercises"`
}
