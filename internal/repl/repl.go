// Package repl implements the interactive fittrack shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chzyer/readline"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/tracker"
	"github.com/notexe/fittrack/internal/ui"
)

var errQuit = errors.New("quit")

type REPL struct {
	store     *tracker.Store
	welcome   notify.Dispatcher
	rl        *readline.Instance
	formatter *ui.Formatter
	out       io.Writer
	now       func() time.Time
}

// NewREPL creates a shell over store. welcome, when not nil, receives the
// welcome email of profiles created from the shell.
func NewREPL(store *tracker.Store, welcome notify.Dispatcher, colored bool) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &REPL{
		store:     store,
		welcome:   welcome,
		rl:        rl,
		formatter: ui.NewFormatter(colored),
		out:       os.Stdout,
		now:       time.Now,
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome(ctx)

	for {
		r.rl.SetPrompt(r.formatter.FormatPrompt(r.activeName(ctx)))

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			r.displayError(fmt.Errorf("unknown input %q (type /help for available commands)", input))
			continue
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			if errors.Is(err, errQuit) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) activeName(ctx context.Context) string {
	p, err := r.store.ActiveProfile(ctx)
	if err != nil {
		return ""
	}
	return p.Name
}

func (r *REPL) today() string {
	return r.store.Date(r.now())
}
