package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/jshost/internal/js"
)

// App encapsulates the host's dependencies, configuration, and lifecycle.
// It is the session's delegate: script lifecycle events and uncaught
// exceptions land here.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config

	mainReady int
	failures  int
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: cfg,
	}
}

// OnMainModuleReady records that the main module graph settled.
func (a *App) OnMainModuleReady() {
	a.mainReady++
	a.logger.Debug("Main module ready.", "script", a.config.Script)
}

// OnUncaughtException prints a formatted diagnostic for an exception no
// script code handled. The run is marked failed but keeps going, matching
// shell behavior where one bad import does not kill the session.
func (a *App) OnUncaughtException(message string, stack []js.Frame) {
	a.failures++
	fmt.Fprintln(a.errW, message)
	for _, frame := range stack {
		fmt.Fprintf(a.errW, "    at %s\n", frame)
	}
}

// Failures returns how many uncaught exceptions the run produced. This is
// primarily for testing.
func (a *App) Failures() int {
	return a.failures
}
