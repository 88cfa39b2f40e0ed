package report

import (
	"fmt"
	"strconv"
	"strings"
)

// DailyMarkdown renders the daily report as markdown for terminal display.
func DailyMarkdown(name string, d *Daily) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily report for %s\n\n", d.Date)
	if name != "" {
		fmt.Fprintf(&b, "Hello %s! Here's your daily fitness summary.\n\n", name)
	}

	b.WriteString("| Metric | Value | Goal |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Calories consumed | %d | %d%% of %d |\n", d.CaloriesConsumed, d.CalorieProgress, d.TargetCalories)
	fmt.Fprintf(&b, "| Calories burned | %d | |\n", d.CaloriesBurned)
	fmt.Fprintf(&b, "| Net calories | %d | |\n", d.NetCalories)
	fmt.Fprintf(&b, "| Water | %sL | %d%% of %sL |\n", decimal(d.WaterDrunk), d.WaterProgress, decimal(d.WaterIntake))
	fmt.Fprintf(&b, "| Habit score | %+d | |\n\n", d.HabitScore)

	fmt.Fprintf(&b, "> %s\n\n", d.Status.Message)

	if len(d.Foods) > 0 {
		b.WriteString("## Foods\n\n")
		for i, f := range d.Foods {
			fmt.Fprintf(&b, "%d. **%s** - %d kcal (%sg)\n", i+1, f.Name, f.Calories, decimal(f.Quantity))
		}
		b.WriteString("\n")
	}

	if len(d.Exercises) > 0 {
		b.WriteString("## Exercises\n\n")
		for i, e := range d.Exercises {
			fmt.Fprintf(&b, "%d. **%s** - %d min, %d kcal\n", i+1, e.Name, e.Duration, e.CaloriesBurned)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Tomorrow's focus\n\n")
	for _, f := range d.Focus {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	return b.String()
}

// WeeklyMarkdown renders the weekly summary as markdown for terminal display.
func WeeklyMarkdown(w *Weekly) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly summary %s to %s\n\n", w.From, w.To)
	b.WriteString("| Date | Calories | Burned | Water | Habits |\n|---|---|---|---|---|\n")
	for _, d := range w.Days {
		fmt.Fprintf(&b, "| %s | %d | %d | %sL | %+d |\n",
			d.Date, d.CaloriesConsumed, d.CaloriesBurned, decimal(d.WaterDrunk), d.HabitScore)
	}

	fmt.Fprintf(&b, "\n**Averages:** %.0f kcal, %.0f burned, %sL water, habit score %s\n\n",
		w.Averages.Calories, w.Averages.Exercise, decimal(w.Averages.Water), decimal(w.Averages.Habits))
	fmt.Fprintf(&b, "%d of %d days on target.", w.DaysOnTarget, len(w.Days))
	if w.BestDay != "" {
		fmt.Fprintf(&b, " Best day: %s.", w.BestDay)
	}
	b.WriteString("\n")

	return b.String()
}

// decimal formats v with as few digits as needed.
func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
