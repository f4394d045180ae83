package js

import (
	"fmt"
	"strings"

	"github.com/grafana/sobek"
)

// installConsole wires a minimal native console object into the runtime.
// Output goes to the host's writer; richer value formatting lives script-side
// in the "--console" virtual module.
func (s *Session) installConsole() {
	console := s.rt.NewObject()

	write := func(call sobek.FunctionCall) sobek.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, displayString(arg))
		}
		fmt.Fprintln(s.output, strings.Join(parts, " "))
		return sobek.Undefined()
	}

	for _, name := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(name, write)
	}
	_ = s.rt.Set("console", console)
}
