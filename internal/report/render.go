package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/tracker"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"decimal": decimal,
	"signed": func(v int) string {
		if v >= 0 {
			return "+" + strconv.Itoa(v)
		}
		return strconv.Itoa(v)
	},
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("15:04")
	},
}

var templates = loadTemplates()

func loadTemplates() map[notify.Kind]*template.Template {
	out := make(map[notify.Kind]*template.Template)
	for _, k := range notify.Kinds() {
		out[k] = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+string(k)+".html"))
	}
	return out
}

// Welcome is the payload of the welcome email.
type Welcome struct {
	Age            int     `json:"age"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
	Goal           string  `json:"goal"`
	TargetCalories int     `json:"targetCalories"`
	WaterIntake    float64 `json:"waterIntake"`
}

// NewWelcome builds the welcome payload for a freshly created profile.
func NewWelcome(p *tracker.Profile) *Welcome {
	return &Welcome{
		Age:            p.Age,
		Height:         p.Height,
		Weight:         p.Weight,
		Goal:           p.Goal,
		TargetCalories: p.TargetCalories,
		WaterIntake:    p.WaterIntake,
	}
}

// Email is a rendered email body with its subject.
type Email struct {
	Subject string
	HTML    string
}

// Subject returns the email subject line for kind. now is used for the
// report date.
func Subject(kind notify.Kind, now time.Time) string {
	switch kind {
	case notify.KindMorning:
		return "🌅 Good Morning! Start Your Fitness Day"
	case notify.KindAfternoon:
		return "🌞 Afternoon Check-in - Stay on Track!"
	case notify.KindEvening:
		return "🌙 Evening Review - Complete Your Day"
	case notify.KindWater:
		return "💧 Hydration Reminder - Drink Water!"
	case notify.KindDailyReport:
		return "📊 Your Daily Fitness Report - " + now.Format("1/2/2006")
	case notify.KindWeeklyReport:
		return "📈 Your Weekly Fitness Summary - " + now.Format("1/2/2006")
	case notify.KindWelcome:
		return "🎉 Welcome to FitTracker Pro - Profile Created Successfully!"
	default:
		return "FitTracker Pro"
	}
}

// RenderEmail renders the subject and HTML body of n.
func RenderEmail(n notify.Notification, now time.Time) (*Email, error) {
	tmpl, ok := templates[n.Kind]
	if !ok {
		return nil, fmt.Errorf("no email template for %q", n.Kind)
	}
	if err := checkData(n.Kind, n.Data); err != nil {
		return nil, err
	}

	subject := Subject(n.Kind, now)
	name := n.Recipient.Name
	if name == "" {
		name = "there"
	}

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "layout", struct {
		Subject string
		Name    string
		Data    any
	}{subject, name, n.Data})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", n.Kind, err)
	}

	return &Email{Subject: subject, HTML: buf.String()}, nil
}

func checkData(kind notify.Kind, data any) error {
	var ok bool
	switch kind {
	case notify.KindDailyReport:
		_, ok = data.(*Daily)
	case notify.KindWeeklyReport:
		_, ok = data.(*Weekly)
	case notify.KindWelcome:
		_, ok = data.(*Welcome)
		ok = ok || data == nil
	default:
		ok = true
	}
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", data, kind)
	}
	return nil
}

// DecodeData decodes a JSON payload into the type expected for kind.
// Reminder kinds carry no payload and return nil.
func DecodeData(kind notify.Kind, raw json.RawMessage) (any, error) {
	var target any
	switch kind {
	case notify.KindDailyReport:
		target = &Daily{}
	case notify.KindWeeklyReport:
		target = &Weekly{}
	case notify.KindWelcome:
		target = &Welcome{}
	default:
		return nil, nil
	}

	if len(raw) == 0 || string(raw) == "null" {
		if kind == notify.KindWelcome {
			return nil, nil
		}
		return nil, fmt.Errorf("%s requires report data", kind)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", kind, err)
	}
	return target, nil
}

// Text returns a short title and body for push channels.
func Text(n notify.Notification) (string, string) {
	switch n.Kind {
	case notify.KindMorning:
		return "🌅 Good Morning!", "Don't forget to log your breakfast and start tracking your day!"
	case notify.KindAfternoon:
		return "🌞 Afternoon Check-in", "How's your day going? Remember to log your lunch and stay active!"
	case notify.KindEvening:
		return "🌙 Evening Reminder", "Time to log your dinner and review your daily progress!"
	case notify.KindWater:
		return "💧 Hydration Reminder", "Time to drink 500ml of water! Stay hydrated!"
	case notify.KindDailyReport:
		d, ok := n.Data.(*Daily)
		if !ok {
			return "📊 Daily Summary Ready", "Your daily report is ready! Check your progress and plan for tomorrow."
		}
		return "📊 Daily Summary Ready", fmt.Sprintf(
			"%d kcal eaten (%d%%), %d burned, net %d. Water %sL (%d%%). Habit score %+d.\n%s",
			d.CaloriesConsumed, d.CalorieProgress, d.CaloriesBurned, d.NetCalories,
			decimal(d.WaterDrunk), d.WaterProgress, d.HabitScore,
			d.Status.Message)
	case notify.KindWeeklyReport:
		w, ok := n.Data.(*Weekly)
		if !ok {
			return "📈 Weekly Summary Ready", "Your weekly summary is ready!"
		}
		return "📈 Weekly Summary Ready", fmt.Sprintf(
			"Averages: %.0f kcal, %.0f burned, %sL water, habits %+.1f. %d of %d days on target.",
			w.Averages.Calories, w.Averages.Exercise,
			decimal(w.Averages.Water), w.Averages.Habits,
			w.DaysOnTarget, len(w.Days))
	case notify.KindWelcome:
		return "🎉 Welcome to FitTracker Pro", "Your profile was created successfully."
	default:
		return "FitTracker Pro", string(n.Kind)
	}
}
