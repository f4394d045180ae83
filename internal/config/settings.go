package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/jshost/internal/ctxlog"
	"github.com/vk/jshost/internal/resources"
)

// DefaultFileName is the settings file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "jshost.hcl"

// Settings holds the tunable host options. Every field is optional in the
// file; empty fields are filled by Merge from lower-precedence layers.
type Settings struct {
	Script    string `hcl:"script,optional"`
	BasePath  string `hcl:"base_path,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFormat string `hcl:"log_format,optional"`
	Quiet     bool   `hcl:"quiet,optional"`
}

// Defaults is the lowest-precedence settings layer.
var Defaults = Settings{
	Script:    resources.Welcome,
	BasePath:  ".",
	LogLevel:  "info",
	LogFormat: "text",
}

// Load parses an HCL settings file. Expressions in the file may reference
// process environment variables through the `env` map, for example
// `base_path = env["HOME"]`.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading settings file.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var settings Settings
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &settings)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	logger.Debug("Settings file decoded.", "path", path)
	return &settings, nil
}

// Merge returns s with empty fields filled in from fallback. Quiet is true
// when either layer sets it, since a boolean flag cannot distinguish "off"
// from "unset".
func (s Settings) Merge(fallback Settings) Settings {
	if s.Script == "" {
		s.Script = fallback.Script
	}
	if s.BasePath == "" {
		s.BasePath = fallback.BasePath
	}
	if s.LogLevel == "" {
		s.LogLevel = fallback.LogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = fallback.LogFormat
	}
	s.Quiet = s.Quiet || fallback.Quiet
	return s
}

// evalContext builds the evaluation context settings expressions run in.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if ok && key != "" {
			env[key] = cty.StringVal(value)
		}
	}

	envVal := cty.MapValEmpty(cty.String)
	if len(env) > 0 {
		envVal = cty.MapVal(env)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVal},
	}
}
