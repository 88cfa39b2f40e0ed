package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (r *REPL) parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// parseKeyValues splits "name=Ann Lee age=30" into fields. A value runs until
// the next key=.
func parseKeyValues(args string) (map[string]string, error) {
	out := make(map[string]string)
	key := ""
	for _, word := range strings.Fields(args) {
		if k, v, ok := strings.Cut(word, "="); ok && k != "" {
			key = strings.ToLower(k)
			out[key] = v
			continue
		}
		if key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", word)
		}
		out[key] = strings.TrimSpace(out[key] + " " + word)
	}
	return out, nil
}

func parseNumber(field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", field, s)
	}
	return v, nil
}

func setupReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "fittrack > ",
		HistoryFile:         "",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		AutoComplete:        completer,
		FuncFilterInputRune: filterInput,
	})

	return rl, err
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/profile", readline.PcItem("new")),
	readline.PcItem("/profiles"),
	readline.PcItem("/use"),
	readline.PcItem("/food"),
	readline.PcItem("/exercise"),
	readline.PcItem("/remove", readline.PcItem("food"), readline.PcItem("exercise")),
	readline.PcItem("/water"),
	readline.PcItem("/habit",
		readline.PcItem("add", readline.PcItem("positive"), readline.PcItem("negative")),
		readline.PcItem("done"),
		readline.PcItem("undo"),
		readline.PcItem("rm"),
	),
	readline.PcItem("/today"),
	readline.PcItem("/week"),
	readline.PcItem("/help"),
	readline.PcItem("/quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
