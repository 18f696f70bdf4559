package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Status prints a one-line verdict such as "✔ user.json conforms to user".
// The line is colored only when w is a terminal.
func Status(w io.Writer, valid bool, document, schemaName string, errors int) {
	msg := fmt.Sprintf("✔ %s conforms to %s", document, schemaName)
	color := "#22c55e"
	if !valid {
		noun := "errors"
		if errors == 1 {
			noun = "error"
		}
		msg = fmt.Sprintf("✘ %s does not conform to %s (%d %s)", document, schemaName, errors, noun)
		color = "#ef4444"
	}

	if !IsTerminal(w) {
		fmt.Fprintln(w, msg)
		return
	}
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w, termenv.String(msg).Foreground(p.Color(color)).Bold())
}
