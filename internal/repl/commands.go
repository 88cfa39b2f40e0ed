package repl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
	"github.com/notexe/fittrack/internal/tracker"
)

// glass is the default water portion in liters.
const glass = 0.25

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/quit", "/exit", "/q":
		return errQuit

	case "/profile":
		if rest, ok := strings.CutPrefix(args, "new"); ok {
			return r.createProfile(ctx, rest)
		}
		return r.showProfile(ctx)

	case "/profiles":
		return r.listProfiles(ctx)

	case "/use":
		return r.useProfile(ctx, args)

	case "/food", "/f":
		return r.logFood(ctx, args)

	case "/exercise", "/ex":
		return r.logExercise(ctx, args)

	case "/remove", "/rm":
		return r.removeEntry(ctx, args)

	case "/water", "/w":
		return r.logWater(ctx, args)

	case "/habit":
		return r.handleHabitCommand(ctx, args)

	case "/today", "/t":
		return r.showToday(ctx)

	case "/week":
		return r.showWeek(ctx)

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) active(ctx context.Context) (*tracker.Profile, error) {
	p, err := r.store.ActiveProfile(ctx)
	if errors.Is(err, tracker.ErrNotFound) {
		return nil, fmt.Errorf("no active profile (create one with /profile new)")
	}
	return p, err
}

func (r *REPL) createProfile(ctx context.Context, args string) error {
	fields, err := parseKeyValues(args)
	if err != nil {
		return fmt.Errorf("usage: /profile new name=<name> age=<years> height=<cm> weight=<kg> [email=] [goal=] [activity=]: %w", err)
	}

	age, err := parseNumber("age", fields["age"])
	if err != nil {
		return err
	}
	height, err := parseNumber("height", fields["height"])
	if err != nil {
		return err
	}
	weight, err := parseNumber("weight", fields["weight"])
	if err != nil {
		return err
	}

	p, err := r.store.CreateProfile(ctx, tracker.ProfileInput{
		Name:          fields["name"],
		Email:         fields["email"],
		Age:           int(age),
		Height:        height,
		Weight:        weight,
		Goal:          fields["goal"],
		ActivityLevel: fields["activity"],
	})
	if err != nil {
		return err
	}

	r.displaySuccess(fmt.Sprintf("Profile %s created: %d kcal and %.1fL water per day.", p.Name, p.TargetCalories, p.WaterIntake))

	if r.welcome != nil && p.Email != "" {
		err := r.welcome.Send(ctx, notify.Notification{
			Kind:      notify.KindWelcome,
			Recipient: notify.Recipient{Email: p.Email, Name: p.Name},
			Data:      report.NewWelcome(p),
		})
		if err != nil {
			log.Printf("[WARN] repl: welcome email to %s failed: %v", p.Email, err)
			r.displayInfo("Welcome email could not be sent.")
		} else {
			r.displayInfo("Welcome email sent to " + p.Email + ".")
		}
	}
	return nil
}

func (r *REPL) showProfile(ctx context.Context) error {
	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("Name:     %s", p.Name),
		fmt.Sprintf("Email:    %s", p.Email),
		fmt.Sprintf("Body:     %d years, %.0f cm, %.1f kg", p.Age, p.Height, p.Weight),
		fmt.Sprintf("Goal:     %s (%s)", p.Goal, p.ActivityLevel),
		fmt.Sprintf("Targets:  %d kcal, %.1fL water", p.TargetCalories, p.WaterIntake),
		fmt.Sprintf("ID:       %s", p.ID),
	}
	r.print(r.formatter.FormatBox("Active profile", strings.Join(lines, "\n")))
	return nil
}

func (r *REPL) listProfiles(ctx context.Context) error {
	profiles, err := r.store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		r.displayInfo("No profiles yet. Create one with /profile new.")
		return nil
	}

	var b strings.Builder
	for _, p := range profiles {
		marker := " "
		if p.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n", marker, p.Name, p.Goal, p.ID)
	}
	r.print(strings.TrimRight(b.String(), "\n"))
	return nil
}

func (r *REPL) useProfile(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /use <id|name>")
	}

	profiles, err := r.store.ListProfiles(ctx)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if p.ID == args || strings.EqualFold(p.Name, args) {
			if _, err := r.store.SetActive(ctx, p.ID); err != nil {
				return err
			}
			r.displaySuccess("Switched to " + p.Name + ".")
			return nil
		}
	}
	return fmt.Errorf("no profile matches %q", args)
}

func (r *REPL) logFood(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return fmt.Errorf("usage: /food <kcal> <name>")
	}
	kcal, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("calories must be a whole number, got %q", fields[0])
	}

	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	f, err := r.store.AddFood(ctx, p.ID, r.today(), tracker.FoodEntry{
		Name:     strings.Join(fields[1:], " "),
		Calories: kcal,
		Quantity: 100,
	})
	if err != nil {
		return err
	}

	r.displaySuccess(fmt.Sprintf("Logged %s (%d kcal).", f.Name, f.Calories))
	return nil
}

// logExercise handles "/exercise <minutes> [kcal] <name>". Without kcal the
// burn is estimated from the exercise name.
func (r *REPL) logExercise(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return fmt.Errorf("usage: /exercise <minutes> [kcal] <name>")
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("minutes must be a whole number, got %q", fields[0])
	}

	name := strings.Join(fields[1:], " ")
	kcal := -1
	if len(fields) > 2 {
		if v, err := strconv.Atoi(fields[1]); err == nil {
			kcal = v
			name = strings.Join(fields[2:], " ")
		}
	}
	if kcal < 0 {
		kcal = tracker.EstimateBurn(name, minutes)
	}

	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	e, err := r.store.AddExercise(ctx, p.ID, r.today(), tracker.ExerciseEntry{
		Name:           name,
		Duration:       minutes,
		CaloriesBurned: kcal,
	})
	if err != nil {
		return err
	}

	r.displaySuccess(fmt.Sprintf("Logged %s: %d min, %d kcal.", e.Name, e.Duration, e.CaloriesBurned))
	return nil
}

// removeEntry handles "/remove food|exercise <n>", where n is the position
// in today's list as shown by /today.
func (r *REPL) removeEntry(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("usage: /remove food|exercise <number>")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return fmt.Errorf("entry number must be a positive whole number, got %q", fields[1])
	}

	p, err := r.active(ctx)
	if err != nil {
		return err
	}
	rec, err := r.store.DailyRecord(ctx, p.ID, r.today())
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return fmt.Errorf("nothing logged today")
		}
		return err
	}

	switch strings.ToLower(fields[0]) {
	case "food":
		if n > len(rec.Foods) {
			return fmt.Errorf("no food #%d today (%d logged)", n, len(rec.Foods))
		}
		f := rec.Foods[n-1]
		if err := r.store.DeleteFood(ctx, p.ID, f.ID); err != nil {
			return err
		}
		r.displayInfo(fmt.Sprintf("Removed %s (%d kcal).", f.Name, f.Calories))
	case "exercise":
		if n > len(rec.Exercises) {
			return fmt.Errorf("no exercise #%d today (%d logged)", n, len(rec.Exercises))
		}
		e := rec.Exercises[n-1]
		if err := r.store.DeleteExercise(ctx, p.ID, e.ID); err != nil {
			return err
		}
		r.displayInfo(fmt.Sprintf("Removed %s (%d kcal).", e.Name, e.CaloriesBurned))
	default:
		return fmt.Errorf("unknown entry type %q (use food or exercise)", fields[0])
	}
	return nil
}

func (r *REPL) logWater(ctx context.Context, args string) error {
	amount := glass
	if args != "" {
		v, err := parseNumber("liters", args)
		if err != nil {
			return err
		}
		amount = v
	}

	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	total, err := r.store.AddWater(ctx, p.ID, r.today(), amount)
	if err != nil {
		return err
	}

	r.print(r.formatter.FormatProgress("Water", report.Percent(total, p.WaterIntake)))
	return nil
}

func (r *REPL) handleHabitCommand(ctx context.Context, args string) error {
	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	parts := strings.Fields(args)
	if len(parts) == 0 {
		return r.listHabits(ctx, p)
	}

	switch strings.ToLower(parts[0]) {
	case "add":
		if len(parts) < 3 {
			return fmt.Errorf("usage: /habit add positive|negative <name>")
		}
		h, err := r.store.AddHabit(ctx, p.ID, strings.Join(parts[2:], " "), strings.ToLower(parts[1]))
		if err != nil {
			return err
		}
		r.displaySuccess(fmt.Sprintf("Tracking %s habit %q.", h.Kind, h.Name))
		return nil

	case "done", "undo":
		if len(parts) < 2 {
			return fmt.Errorf("usage: /habit %s <id|name>", parts[0])
		}
		h, err := r.findHabit(ctx, p.ID, strings.Join(parts[1:], " "))
		if err != nil {
			return err
		}
		done := strings.ToLower(parts[0]) == "done"
		if err := r.store.SetHabitCompleted(ctx, p.ID, r.today(), h.ID, done); err != nil {
			return err
		}
		if done {
			r.displaySuccess(fmt.Sprintf("%s done for today.", h.Name))
		} else {
			r.displayInfo(fmt.Sprintf("%s cleared for today.", h.Name))
		}
		return nil

	case "rm", "remove":
		if len(parts) < 2 {
			return fmt.Errorf("usage: /habit rm <id|name>")
		}
		h, err := r.findHabit(ctx, p.ID, strings.Join(parts[1:], " "))
		if err != nil {
			return err
		}
		if err := r.store.DeleteHabit(ctx, p.ID, h.ID); err != nil {
			return err
		}
		r.displayInfo(fmt.Sprintf("Stopped tracking %s.", h.Name))
		return nil

	default:
		return fmt.Errorf("unknown habit command: %s (use add, done, undo or rm)", parts[0])
	}
}

func (r *REPL) listHabits(ctx context.Context, p *tracker.Profile) error {
	habits, err := r.store.ListHabits(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		r.displayInfo("No habits yet. Add one with /habit add positive <name>.")
		return nil
	}

	done := make(map[string]bool)
	if rec, err := r.store.DailyRecord(ctx, p.ID, r.today()); err == nil {
		for _, id := range rec.HabitsCompleted.Positive {
			done[id] = true
		}
		for _, id := range rec.HabitsCompleted.Negative {
			done[id] = true
		}
	}

	var b strings.Builder
	for _, h := range habits {
		mark := "[ ]"
		if done[h.ID] {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", mark, h.Name, h.Kind)
	}
	r.print(strings.TrimRight(b.String(), "\n"))
	return nil
}

func (r *REPL) findHabit(ctx context.Context, profileID, ref string) (*tracker.Habit, error) {
	habits, err := r.store.ListHabits(ctx, profileID)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		if habits[i].ID == ref || strings.EqualFold(habits[i].Name, ref) {
			return &habits[i], nil
		}
	}
	return nil, fmt.Errorf("no habit matches %q", ref)
}

func (r *REPL) showToday(ctx context.Context) error {
	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	rec, err := r.store.DailyRecord(ctx, p.ID, r.today())
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			r.displayInfo("Nothing logged today yet.")
			return nil
		}
		return err
	}

	d := report.BuildDaily(p, rec)
	r.print(r.formatter.FormatProgress("Calories", d.CalorieProgress))
	r.print(r.formatter.FormatProgress("Water", d.WaterProgress))
	r.print(r.formatter.FormatStatus(d.Status.Class, d.Status.Message))
	r.print("")
	r.print(r.formatter.RenderMarkdown(report.DailyMarkdown(p.Name, d)))
	return nil
}

func (r *REPL) showWeek(ctx context.Context) error {
	p, err := r.active(ctx)
	if err != nil {
		return err
	}

	days, err := tracker.LastDays(ctx, r.store, p.ID, r.now().In(r.store.Location()), 7)
	if err != nil {
		return err
	}

	r.print(r.formatter.RenderMarkdown(report.WeeklyMarkdown(report.BuildWeekly(p, days))))
	return nil
}
