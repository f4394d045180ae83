package js

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/jshost/internal/taskqueue"
)

// recordedReport is one delegate notification captured during a test.
type recordedReport struct {
	message string
	frames  []Frame
}

// recordingDelegate captures session events for assertions.
type recordingDelegate struct {
	ready   int
	reports []recordedReport
}

func (d *recordingDelegate) OnMainModuleReady() { d.ready++ }

func (d *recordingDelegate) OnUncaughtException(message string, stack []Frame) {
	d.reports = append(d.reports, recordedReport{message: message, frames: stack})
}

// testEnv bundles a session with its collaborators and instrumentation.
type testEnv struct {
	session  *Session
	delegate *recordingDelegate
	queue    *taskqueue.Queue
	reads    map[string]int
	out      *bytes.Buffer
}

func newTestEnv(t *testing.T, baseDir string) *testEnv {
	t.Helper()

	env := &testEnv{
		delegate: &recordingDelegate{},
		queue:    taskqueue.New(),
		reads:    make(map[string]int),
		out:      &bytes.Buffer{},
	}

	session, err := NewSession(Options{
		BasePath: baseDir,
		Delegate: env.delegate,
		Queue:    env.queue,
		Output:   env.out,
		ReadFile: func(path string) ([]byte, error) {
			env.reads[path]++
			return os.ReadFile(path)
		},
	})
	require.NoError(t, err)
	t.Cleanup(session.Close)

	env.session = session
	return env
}

// flushMicrotasks gives the engine an empty turn to drain any queued promise
// reactions before the test inspects globals.
func (env *testEnv) flushMicrotasks() {
	env.session.FlushMicrotasks()
}

// global reads a global variable set by a previous script and renders it.
func (env *testEnv) global(name string) string {
	result := env.session.ExecuteScript(name)
	if result == nil {
		return ""
	}
	return *result
}

// totalReads returns how many filesystem reads the session performed.
func (env *testEnv) totalReads() int {
	n := 0
	for _, count := range env.reads {
		n += count
	}
	return n
}

// writeModule writes a module source file under dir and returns its path.
func writeModule(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}
