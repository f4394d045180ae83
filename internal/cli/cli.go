package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/jshost/internal/app"
	"github.com/vk/jshost/internal/config"
	"github.com/vk/jshost/internal/resources"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(ctx context.Context, args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("jshost", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
jshost - an embedded JavaScript shell with an ES-module loader.

Usage:
  jshost [options] [SCRIPT]

Arguments:
  SCRIPT
    Path to the main module, relative to the base path, or a built-in
    module token such as `+resources.Welcome+`. Defaults to `+resources.Welcome+`.

Options:
`)
		flagSet.PrintDefaults()
	}

	exprFlag := flagSet.String("e", "", "Evaluate an inline expression instead of loading a script.")
	basePathFlag := flagSet.String("base-path", "", "Directory script imports resolve against. Defaults to the working directory.")
	configFlag := flagSet.String("config", "", "Path to an HCL settings file. Defaults to ./"+config.DefaultFileName+" when present.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	quietFlag := flagSet.Bool("quiet", false, "Suppress printing of script results.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	script := ""
	if flagSet.NArg() > 0 {
		script = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "at most one script argument is accepted"}
	}
	if script != "" && *exprFlag != "" {
		return nil, false, &ExitError{Code: 2, Message: "a script argument and -e are mutually exclusive"}
	}
	slog.Debug("Script determined.", "script", script, "expression", *exprFlag != "")

	appConfig, err := app.NewConfig(ctx, app.Config{
		Script:     script,
		Expression: *exprFlag,
		ConfigPath: *configFlag,
		BasePath:   *basePathFlag,
		LogFormat:  *logFormatFlag,
		LogLevel:   *logLevelFlag,
		Quiet:      *quietFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", appConfig)
	return appConfig, false, nil
}
