// Command fittrack runs the fitness reminder daemon, the send-email endpoint
// and the interactive tracking shell.
//
// Usage:
//
//	fittrack daemon            # schedule reminders and reports
//	fittrack serve             # serve POST /api/send-email
//	fittrack shell             # log food, exercise, water and habits
//	fittrack report [--weekly] # print today's or this week's report
//
// Configuration is read from ~/.fittrack/config.yaml and FITTRACK_*
// environment variables.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/notexe/fittrack/internal/config"
)

const version = "1.0.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "fittrack"
	app.Usage = "Fitness tracking with scheduled reminders and reports"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: config.GetDefaultConfigPath(),
			Usage: "path to configuration file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "override log level (DEBUG, INFO, WARN, ERROR)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "daemon",
			Usage:  "arm the reminder schedule and dispatch until interrupted",
			Action: daemon,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "serve",
					Usage: "also serve the send-email endpoint",
				},
			},
		},
		{
			Name:   "serve",
			Usage:  "serve the send-email endpoint",
			Action: serve,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "addr",
					Usage: "listen address (default from config)",
				},
			},
		},
		{
			Name:    "shell",
			Aliases: []string{"sh"},
			Usage:   "interactive tracking shell",
			Action:  shell,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "no-color",
					Usage: "disable colored output",
				},
			},
		},
		{
			Name:   "report",
			Usage:  "print the daily or weekly report of the active profile",
			Action: printReport,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "weekly, w",
					Usage: "seven day summary instead of the daily report",
				},
				cli.StringFlag{
					Name:  "date, d",
					Usage: "report day in YYYY-MM-DD format (default: today)",
				},
				cli.BoolFlag{
					Name:  "send",
					Usage: "dispatch the report through the configured channels",
				},
				cli.BoolFlag{
					Name:  "no-color",
					Usage: "disable colored output",
				},
			},
		},
	}
	return app
}
