package app

import (
	"context"
	"fmt"

	"github.com/vk/jshost/internal/ctxlog"
	"github.com/vk/jshost/internal/js"
	"github.com/vk/jshost/internal/taskqueue"
)

// Run executes the configured script. It builds the task queue and the
// scripting session, runs either the inline expression or the main module,
// then drains deferred work to quiescence.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	queue := taskqueue.New()
	session, err := js.NewSession(js.Options{
		BasePath: a.config.BasePath,
		Delegate: a,
		Queue:    queue,
		Output:   a.outW,
	})
	if err != nil {
		return fmt.Errorf("failed to create scripting session: %w", err)
	}
	defer session.Close()
	a.logger.Debug("Session created.", "base_path", session.BasePath())

	if a.config.Expression != "" {
		a.logger.Debug("Running inline expression.")
		if a.config.Quiet {
			session.SuppressNextScriptResult()
		}
		if result := session.ExecuteScript(a.config.Expression); result != nil {
			fmt.Fprintln(a.outW, *result)
		}
	} else {
		a.logger.Debug("Loading main module.", "script", a.config.Script)
		// Failures are already reported through the delegate; the run
		// continues so queued dynamic imports still get their turn.
		_ = session.LoadMainModule(a.config.Script)
	}

	drained := 0
	for {
		drained += queue.Drain()
		session.FlushMicrotasks()
		if queue.Len() == 0 {
			break
		}
	}
	a.logger.Debug("Task queue drained.", "tasks", drained, "uptime_s", session.Uptime())

	if a.failures > 0 {
		return fmt.Errorf("run finished with %d uncaught exception(s)", a.failures)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
