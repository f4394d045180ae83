package js

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grafana/sobek"

	"github.com/vk/jshost/internal/resources"
)

// Placeholder names used when the engine has no function or source name for
// a stack frame.
const (
	placeholderFunction = "<top>"
	placeholderSource   = "<script>"
)

// Frame is one entry of a script call stack, ordered innermost first.
type Frame struct {
	Function string
	Source   string
	Line     int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.Source, f.Line)
}

// reportError converts an error from any engine or loader call into a
// structured report and hands it to the delegate. Load-time errors carry
// their diagnostic chain; engine exceptions carry a call stack.
func (s *Session) reportError(err error) {
	var ex *sobek.Exception
	if errors.As(err, &ex) {
		message, frames := parseEngineStack(ex.String())
		s.deliver(message, frames)
		return
	}

	var scriptErr *ScriptError
	if errors.As(err, &scriptErr) {
		s.reportThrown(scriptErr.Value)
		return
	}

	message := err.Error()
	var withChain chained
	if errors.As(err, &withChain) {
		if chain := withChain.loadChain(); len(chain) > 0 {
			message += "\n" + renderChain(s.basePath, chain)
		}
	}
	s.deliver(message, nil)
}

// reportThrown reports a value thrown by script code, recovering the call
// stack from the value's stack property when it carries one.
func (s *Session) reportThrown(reason sobek.Value) {
	if reason == nil {
		s.deliver("uncaught exception", nil)
		return
	}
	if obj, ok := reason.(*sobek.Object); ok {
		if stack := obj.Get("stack"); stack != nil && !sobek.IsUndefined(stack) {
			message, frames := parseEngineStack(stack.String())
			s.deliver(message, frames)
			return
		}
	}
	s.deliver(reason.String(), nil)
}

func (s *Session) deliver(message string, frames []Frame) {
	s.delegate.OnUncaughtException(message, frames)
}

// renderChain formats the chain of module paths that were being loaded when
// a failure occurred, innermost first, relative to the session's base path:
//
//	    loading helpers.js
//	       from util.js
func renderChain(basePath string, chain []string) string {
	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		if i == len(chain)-1 {
			b.WriteString("    loading ")
		} else {
			b.WriteString("\n       from ")
		}
		b.WriteString(displayPath(basePath, chain[i]))
	}
	return b.String()
}

// displayPath renders a module path for diagnostics: virtual tokens as-is,
// filesystem paths relative to the base path when possible.
func displayPath(basePath, path string) string {
	if resources.IsVirtual(path) {
		return path
	}
	if rel, err := filepath.Rel(basePath, path); err == nil {
		return rel
	}
	return path
}

// parseEngineStack splits the engine's rendered exception text into the
// leading message and its structured stack frames. Frame lines look like
//
//	at doWork (/src/util.js:3:9(2))
//	at /src/main.js:5:1(4)
//	at native
func parseEngineStack(text string) (string, []Frame) {
	var messageLines []string
	var frames []Frame

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "at ") {
			frames = append(frames, parseFrame(strings.TrimPrefix(trimmed, "at ")))
			continue
		}
		if len(frames) == 0 {
			messageLines = append(messageLines, line)
		}
	}

	message := strings.TrimSpace(strings.Join(messageLines, "\n"))
	return message, frames
}

// parseFrame parses a single "at ..." stack line, substituting placeholders
// for whatever the engine left out.
func parseFrame(s string) Frame {
	frame := Frame{Function: placeholderFunction, Source: placeholderSource}

	location := s
	if idx := strings.Index(s, " ("); idx != -1 && strings.HasSuffix(s, ")") {
		if fn := strings.TrimSpace(s[:idx]); fn != "" {
			frame.Function = fn
		}
		location = s[idx+2 : len(s)-1]
	}

	// Strip the trailing program-counter group: "file:3:9(2)" -> "file:3:9".
	if strings.HasSuffix(location, ")") {
		if open := strings.LastIndexByte(location, '('); open != -1 {
			location = location[:open]
		}
	}

	parts := strings.Split(location, ":")
	switch {
	case len(parts) >= 3:
		// Source may itself contain colons; only the last two fields are
		// line and column.
		frame.Source = strings.Join(parts[:len(parts)-2], ":")
		frame.Line, _ = strconv.Atoi(parts[len(parts)-2])
	case len(parts) == 2:
		frame.Source = parts[0]
		frame.Line, _ = strconv.Atoi(parts[1])
	default:
		if location != "" {
			frame.Source = location
		}
	}
	return frame
}
