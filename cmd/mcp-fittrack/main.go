// Command mcp-fittrack provides an MCP server for fitness tracking.
//
// This server provides tools for managing profiles, logging food, exercise,
// water and habits, and reading daily and weekly reports stored in a SQLite
// database.
//
// Usage:
//
//	./mcp-fittrack          # Start MCP server (stdio)
//	./mcp-fittrack --help   # Show help
//
// Environment:
//
//	FITTRACK_DB_PATH         Path to SQLite database (default: store.path from config)
//	FITTRACK_SEND_EMAIL_URL  Send-email endpoint for welcome emails (optional)
//
// Days are counted in reminders.location from ~/.fittrack/config.yaml so
// entries match the daemon's reports.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/fittrack/internal/config"
	"github.com/notexe/fittrack/internal/mcpserver"
	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/tracker"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	dbPath := os.Getenv("FITTRACK_DB_PATH")
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	store, err := tracker.NewStore(dbPath, tracker.WithLocation(loc))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var welcome notify.Dispatcher
	if url := os.Getenv("FITTRACK_SEND_EMAIL_URL"); url != "" {
		welcome = notify.NewEndpointSender(url, 30*time.Second)
	}

	s := mcpserver.NewServer(store, welcome)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP FitTrack Server - Fitness tracking via MCP protocol

USAGE:
    mcp-fittrack          Start MCP server (communicates via stdio)
    mcp-fittrack --help   Show this help

ENVIRONMENT:
    FITTRACK_DB_PATH         Path to SQLite database file
                             Default: store.path from ~/.fittrack/config.yaml
                             (~/.fittrack/fittrack.db)
    FITTRACK_SEND_EMAIL_URL  Send-email endpoint used for welcome emails
                             Example: http://localhost:8080/api/send-email

TOOLS:
    create_profile   Create a profile (name, email, age, height, weight, goal, activity_level)
    list_profiles    List all profiles
    switch_profile   Make a profile the active one
    delete_profile   Delete a profile and its records
    log_food         Log a food (name, calories, quantity)
    log_exercise     Log an exercise (name, duration, calories_burned estimated when omitted)
    remove_food      Remove a logged food by entry ID
    remove_exercise  Remove a logged exercise by entry ID
    log_water        Log water in liters (default 0.25)
    add_habit        Add a positive or negative habit
    list_habits      List habits
    delete_habit     Stop tracking a habit
    complete_habit   Mark a habit done or undone for today
    daily_report     Daily report for the active profile
    weekly_report    Seven day summary for the active profile

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "fittrack": {
          "command": "/path/to/mcp-fittrack",
          "args": []
        }
      }
    }`)
}
