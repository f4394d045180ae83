package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettingsFile(t, `
script     = "main.js"
base_path  = "/srv/scripts"
log_level  = "debug"
log_format = "json"
quiet      = true
`)

	settings, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "main.js", settings.Script)
	assert.Equal(t, "/srv/scripts", settings.BasePath)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "json", settings.LogFormat)
	assert.True(t, settings.Quiet)
}

func TestLoadSettingsEnvInterpolation(t *testing.T) {
	t.Setenv("JSHOST_TEST_SCRIPTS", "/opt/js")
	path := writeSettingsFile(t, `base_path = env["JSHOST_TEST_SCRIPTS"]`)

	settings, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/js", settings.BasePath)
}

func TestLoadSettingsRejectsMalformedFile(t *testing.T) {
	path := writeSettingsFile(t, `script = `)

	_, err := Load(context.Background(), path)
	assert.ErrorContains(t, err, "failed to parse settings file")
}

func TestLoadSettingsRejectsUnknownAttribute(t *testing.T) {
	path := writeSettingsFile(t, `workers = 4`)

	_, err := Load(context.Background(), path)
	assert.ErrorContains(t, err, "failed to decode settings file")
}

func TestMergePrecedence(t *testing.T) {
	flags := Settings{LogLevel: "debug"}
	file := Settings{Script: "app.js", LogLevel: "error", Quiet: true}

	merged := flags.Merge(file).Merge(Defaults)
	assert.Equal(t, "app.js", merged.Script, "file fills fields flags left empty")
	assert.Equal(t, "debug", merged.LogLevel, "flags win over the file")
	assert.Equal(t, ".", merged.BasePath, "defaults fill the rest")
	assert.Equal(t, "text", merged.LogFormat)
	assert.True(t, merged.Quiet)
}

func TestMergeDefaultsAlone(t *testing.T) {
	merged := Settings{}.Merge(Defaults)
	assert.Equal(t, Defaults, merged)
}
