package repl

import (
	"context"
	"fmt"
)

func (r *REPL) print(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *REPL) displayError(err error) {
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWelcome(ctx context.Context) {
	fmt.Fprint(r.out, r.formatter.FormatWelcome(r.activeName(ctx)))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
}

func (r *REPL) displaySuccess(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSuccess(msg))
}
