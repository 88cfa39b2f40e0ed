// Package mcpserver exposes the fitness tracker over the Model Context
// Protocol so assistants can manage profiles, log activity and read reports.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
	"github.com/notexe/fittrack/internal/tracker"
)

const (
	serverName    = "fittrack"
	serverVersion = "1.0.0"
)

// Server is the MCP server for the fitness tracker.
type Server struct {
	mcpServer *server.MCPServer
	store     *tracker.Store
	welcome   notify.Dispatcher
	now       func() time.Time
}

// NewServer creates a new MCP server backed by the given store. When welcome
// is not nil, new profiles with an email address get a welcome email.
func NewServer(store *tracker.Store, welcome notify.Dispatcher) *Server {
	s := &Server{
		store:   store,
		welcome: welcome,
		now:     time.Now,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func dateParam() mcp.ToolOption {
	return mcp.WithString("date", mcp.Description("Day in YYYY-MM-DD format (default: today)"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("create_profile",
			mcp.WithDescription("Create a profile, compute its calorie and water targets and make it the active profile"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
			mcp.WithString("email", mcp.Description("Email address for reminders and reports")),
			mcp.WithNumber("age", mcp.Required(), mcp.Description("Age in years")),
			mcp.WithNumber("height", mcp.Required(), mcp.Description("Height in cm")),
			mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in kg")),
			mcp.WithString("goal", mcp.Description("Goal: cut, bulk, maintenance (default: maintenance)")),
			mcp.WithString("activity_level", mcp.Description("Activity: sedentary, light, moderate, active, veryActive (default: moderate)")),
		),
		s.handleCreateProfile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List all profiles, the active one is marked"),
		),
		s.handleListProfiles,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("switch_profile",
			mcp.WithDescription("Make another profile the active one"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Profile ID")),
		),
		s.handleSwitchProfile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_profile",
			mcp.WithDescription("Delete a profile and all of its records"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Profile ID")),
		),
		s.handleDeleteProfile,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("log_food",
			mcp.WithDescription("Log a food for the active profile"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Food name")),
			mcp.WithNumber("calories", mcp.Required(), mcp.Description("Calories of the portion")),
			mcp.WithNumber("quantity", mcp.Description("Portion size in grams")),
			dateParam(),
		),
		s.handleLogFood,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("log_exercise",
			mcp.WithDescription("Log an exercise for the active profile"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
			mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
			mcp.WithNumber("calories_burned", mcp.Description("Calories burned (default: estimated from name and duration)")),
			dateParam(),
		),
		s.handleLogExercise,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove_food",
			mcp.WithDescription("Remove a logged food of the active profile"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Food entry ID as returned by log_food")),
		),
		s.handleRemoveFood,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove_exercise",
			mcp.WithDescription("Remove a logged exercise of the active profile"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Exercise entry ID as returned by log_exercise")),
		),
		s.handleRemoveExercise,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("log_water",
			mcp.WithDescription("Add water to the active profile's daily intake"),
			mcp.WithNumber("liters", mcp.Description("Liters drunk (default: 0.25, one glass)")),
			dateParam(),
		),
		s.handleLogWater,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_habit",
			mcp.WithDescription("Define a habit to track for the active profile"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Habit name")),
			mcp.WithString("kind", mcp.Description("positive (to build) or negative (to avoid), default positive")),
		),
		s.handleAddHabit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_habits",
			mcp.WithDescription("List the active profile's habits"),
		),
		s.handleListHabits,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_habit",
			mcp.WithDescription("Stop tracking a habit and drop its completions"),
			mcp.WithString("habit_id", mcp.Required(), mcp.Description("Habit ID")),
		),
		s.handleDeleteHabit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_habit",
			mcp.WithDescription("Mark a habit as done (or undone) on a day"),
			mcp.WithString("habit_id", mcp.Required(), mcp.Description("Habit ID")),
			mcp.WithBoolean("done", mcp.Description("false to clear the completion (default: true)")),
			dateParam(),
		),
		s.handleCompleteHabit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("daily_report",
			mcp.WithDescription("Daily report for the active profile: calories, water, habits, goal status"),
			dateParam(),
		),
		s.handleDailyReport,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("weekly_report",
			mcp.WithDescription("Summary of the seven days ending on date for the active profile"),
			dateParam(),
		),
		s.handleWeeklyReport,
	)
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}

func (s *Server) date(req mcp.CallToolRequest) (string, error) {
	v := req.GetString("date", "")
	if v == "" {
		return s.store.Date(s.now()), nil
	}
	if _, err := time.Parse(tracker.DateLayout, v); err != nil {
		return "", fmt.Errorf("invalid date %q (use YYYY-MM-DD)", v)
	}
	return v, nil
}

func (s *Server) active(ctx context.Context) (*tracker.Profile, *mcp.CallToolResult) {
	p, err := s.store.ActiveProfile(ctx)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return nil, mcp.NewToolResultError("no active profile, create one with create_profile")
		}
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err))
	}
	return p, nil
}

func (s *Server) handleCreateProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := tracker.ProfileInput{
		Name:          req.GetString("name", ""),
		Email:         req.GetString("email", ""),
		Age:           int(req.GetFloat("age", 0)),
		Height:        req.GetFloat("height", 0),
		Weight:        req.GetFloat("weight", 0),
		Goal:          req.GetString("goal", ""),
		ActivityLevel: req.GetString("activity_level", ""),
	}

	p, err := s.store.CreateProfile(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create profile: %v", err)), nil
	}

	if s.welcome != nil && p.Email != "" {
		err := s.welcome.Send(ctx, notify.Notification{
			Kind:      notify.KindWelcome,
			Recipient: notify.Recipient{Email: p.Email, Name: p.Name},
			Data:      report.NewWelcome(p),
		})
		if err != nil {
			log.Printf("[WARN] mcpserver: welcome email to %s failed: %v", p.Email, err)
		}
	}

	return jsonResult(p), nil
}

func (s *Server) handleListProfiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list profiles: %v", err)), nil
	}

	if len(profiles) == 0 {
		return mcp.NewToolResultText("No profiles found."), nil
	}

	return jsonResult(profiles), nil
}

func (s *Server) handleSwitchProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	p, err := s.store.SetActive(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to switch profile: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Active profile is now %s (%s).", p.Name, p.ID)), nil
}

func (s *Server) handleDeleteProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete profile: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Profile %s deleted.", id)), nil
}

func (s *Server) handleLogFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}
	date, err := s.date(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := s.store.AddFood(ctx, p.ID, date, tracker.FoodEntry{
		Name:     req.GetString("name", ""),
		Calories: int(req.GetFloat("calories", 0)),
		Quantity: req.GetFloat("quantity", 100),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log food: %v", err)), nil
	}

	return jsonResult(f), nil
}

func (s *Server) handleLogExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}
	date, err := s.date(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := req.GetString("name", "")
	minutes := int(req.GetFloat("duration", 0))
	burned := int(req.GetFloat("calories_burned", -1))
	if burned < 0 {
		burned = tracker.EstimateBurn(name, minutes)
	}

	e, err := s.store.AddExercise(ctx, p.ID, date, tracker.ExerciseEntry{
		Name:           name,
		Duration:       minutes,
		CaloriesBurned: burned,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log exercise: %v", err)), nil
	}

	return jsonResult(e), nil
}

func (s *Server) handleRemoveFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}

	id := int64(req.GetFloat("id", 0))
	if err := s.store.DeleteFood(ctx, p.ID, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove food: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Food entry %d removed.", id)), nil
}

func (s *Server) handleRemoveExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}

	id := int64(req.GetFloat("id", 0))
	if err := s.store.DeleteExercise(ctx, p.ID, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove exercise: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exercise entry %d removed.", id)), nil
}

func (s *Server) handleLogWater(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}
	date, err := s.date(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	total, err := s.store.AddWater(ctx, p.ID, date, req.GetFloat("liters", 0.25))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log water: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Water on %s: %.2fL of %.1fL (%d%%).",
		date, total, p.WaterIntake, report.Percent(total, p.WaterIntake))), nil
}

func (s *Server) handleAddHabit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}

	h, err := s.store.AddHabit(ctx, p.ID, req.GetString("name", ""), req.GetString("kind", tracker.HabitPositive))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add habit: %v", err)), nil
	}

	return jsonResult(h), nil
}

func (s *Server) handleListHabits(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}

	habits, err := s.store.ListHabits(ctx, p.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list habits: %v", err)), nil
	}

	if len(habits) == 0 {
		return mcp.NewToolResultText("No habits defined."), nil
	}

	return jsonResult(habits), nil
}

func (s *Server) handleDeleteHabit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}

	id := req.GetString("habit_id", "")
	if id == "" {
		return mcp.NewToolResultError("habit_id is required"), nil
	}

	if err := s.store.DeleteHabit(ctx, p.ID, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete habit: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Habit %s deleted.", id)), nil
}

func (s *Server) handleCompleteHabit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}
	date, err := s.date(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id := req.GetString("habit_id", "")
	if id == "" {
		return mcp.NewToolResultError("habit_id is required"), nil
	}
	done := req.GetBool("done", true)

	if err := s.store.SetHabitCompleted(ctx, p.ID, date, id, done); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update habit: %v", err)), nil
	}

	if done {
		return mcp.NewToolResultText(fmt.Sprintf("Habit %s completed on %s.", id, date)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Habit %s cleared on %s.", id, date)), nil
}

func (s *Server) handleDailyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}
	date, err := s.date(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.store.DailyRecord(ctx, p.ID, date)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("Nothing recorded on %s.", date)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load record: %v", err)), nil
	}

	return mcp.NewToolResultText(report.DailyMarkdown(p.Name, report.BuildDaily(p, rec))), nil
}

func (s *Server) handleWeeklyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, res := s.active(ctx)
	if res != nil {
		return res, nil
	}
	date, err := s.date(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, _ := time.Parse(tracker.DateLayout, date)

	days, err := tracker.LastDays(ctx, s.store, p.ID, end, 7)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load week: %v", err)), nil
	}

	return mcp.NewToolResultText(report.WeeklyMarkdown(report.BuildWeekly(p, days))), nil
}
