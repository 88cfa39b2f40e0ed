package tracker

import "testing"

func TestTargetCalories(t *testing.T) {
	// BMR for 70kg/170cm/30y = 88.362 + 937.79 + 815.83 - 170.31 = 1671.672
	cases := []struct {
		activity string
		goal     string
		want     int
	}{
		{ActivityModerate, GoalMaintenance, 2591},
		{ActivityModerate, GoalCut, 2091},
		{ActivityModerate, GoalBulk, 3091},
		{ActivitySedentary, GoalMaintenance, 2006},
		{"unknown", GoalMaintenance, 2591},
	}

	for _, c := range cases {
		got := TargetCalories(70, 170, 30, c.activity, c.goal)
		if got != c.want {
			t.Errorf("TargetCalories(%s, %s) = %d, want %d", c.activity, c.goal, got, c.want)
		}
	}
}

func TestWaterIntake(t *testing.T) {
	cases := map[float64]float64{
		70: 2.5,
		80: 2.8,
		55: 1.9,
	}
	for weight, want := range cases {
		if got := WaterIntake(weight); got != want {
			t.Errorf("WaterIntake(%v) = %v, want %v", weight, got, want)
		}
	}
}

func TestProfileInputValidate(t *testing.T) {
	in := ProfileInput{Name: "Ann", Age: 30, Height: 170, Weight: 70}
	if err := in.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Goal != GoalMaintenance || in.ActivityLevel != ActivityModerate {
		t.Fatalf("defaults not applied: %+v", in)
	}

	bad := []ProfileInput{
		{Age: 30, Height: 170, Weight: 70},
		{Name: "Ann", Height: 170, Weight: 70},
		{Name: "Ann", Age: 30, Height: 170, Weight: 70, Goal: "shred"},
		{Name: "Ann", Age: 30, Height: 170, Weight: 70, ActivityLevel: "extreme"},
	}
	for i, in := range bad {
		if err := in.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestEstimateBurn(t *testing.T) {
	cases := []struct {
		name    string
		minutes int
		want    int
	}{
		{"Morning Running", 30, 300},
		{"walking", 45, 225},
		{"Power Yoga", 20, 60},
		{"Swimming laps", 10, 120},
		{"Rowing", 30, 210},
		{"Rowing", 0, 0},
	}

	for _, c := range cases {
		if got := EstimateBurn(c.name, c.minutes); got != c.want {
			t.Errorf("EstimateBurn(%q, %d) = %d, want %d", c.name, c.minutes, got, c.want)
		}
	}
}
