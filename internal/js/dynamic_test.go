package js

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jshost/internal/taskqueue"
)

// countingQueue wraps the task queue to observe how many tasks get posted.
type countingQueue struct {
	inner *taskqueue.Queue
	posts int
}

func (q *countingQueue) Post(task func()) {
	q.posts++
	q.inner.Post(task)
}

func TestDynamicImportFromInlineScript(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mod.js", `export const value = 42;`)

	env := newTestEnv(t, dir)
	env.session.ExecuteScript(`
		globalThis.dyn = null;
		import('./mod.js').then((m) => { globalThis.dyn = m.value; });
	`)

	// The load never happens inside the requesting turn.
	assert.Equal(t, "null", env.global("dyn"))
	assert.Equal(t, 1, env.queue.Len())

	env.queue.Drain()
	env.flushMicrotasks()
	assert.Equal(t, "42", env.global("dyn"))
}

func TestDynamicImportFromModuleReferrer(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "app/main.js", `
		import('./sub/dep.js').then((m) => { globalThis.depVal = m.value; });
	`)
	writeModule(t, dir, "app/sub/dep.js", `export const value = 5;`)

	env := newTestEnv(t, dir)
	require.NoError(t, env.session.LoadMainModule("app/main.js"))

	env.queue.Drain()
	env.flushMicrotasks()
	assert.Equal(t, "5", env.global("depVal"))
	assert.Empty(t, env.delegate.reports)
}

func TestDynamicImportDeduplication(t *testing.T) {
	dir := t.TempDir()
	modPath := writeModule(t, dir, "mod.js", `export const value = 42;`)

	delegate := &recordingDelegate{}
	queue := &countingQueue{inner: taskqueue.New()}
	reads := map[string]int{}
	session, err := NewSession(Options{
		BasePath: dir,
		Delegate: delegate,
		Queue:    queue,
		Output:   &bytes.Buffer{},
		ReadFile: func(path string) ([]byte, error) {
			reads[path]++
			return os.ReadFile(path)
		},
	})
	require.NoError(t, err)
	t.Cleanup(session.Close)

	session.ExecuteScript(`
		globalThis.r1 = null;
		globalThis.r2 = null;
		import('./mod.js').then((m) => { globalThis.r1 = m.value; });
		import('./mod.js').then((m) => { globalThis.r2 = m.value; });
	`)

	// Two requests in the same turn collapse into one deferred task.
	assert.Equal(t, 1, queue.posts)

	queue.inner.Drain()
	session.ExecuteScript("undefined")

	read := func(name string) string {
		result := session.ExecuteScript(name)
		require.NotNil(t, result)
		return *result
	}
	assert.Equal(t, "42", read("r1"))
	assert.Equal(t, "42", read("r2"))
	assert.Equal(t, 1, reads[modPath])
}

func TestDynamicImportInvalidSpecifierRejectsWithoutTask(t *testing.T) {
	env := newTestEnv(t, t.TempDir())
	env.session.ExecuteScript(`
		globalThis.msg = null;
		import('lodash').catch((e) => { globalThis.msg = String(e); });
	`)

	// Rejection happens synchronously; nothing was deferred and nothing was
	// read from disk.
	assert.Zero(t, env.queue.Len())
	assert.Zero(t, env.totalReads())

	env.flushMicrotasks()
	msg := env.global("msg")
	assert.Contains(t, msg, "Invalid module name: 'lodash'")
	assert.Contains(t, msg, "Valid imports must begin with ./ or ../")
}

func TestDynamicImportFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "ok.js", `export const value = 7;`)

	env := newTestEnv(t, dir)
	env.session.ExecuteScript(`
		globalThis.failMsg = null;
		import('./missing.js').catch((e) => { globalThis.failMsg = String(e); });
	`)
	env.queue.Drain()
	env.flushMicrotasks()
	assert.NotEqual(t, "null", env.global("failMsg"))

	// A later, independent import still resolves.
	env.session.ExecuteScript(`
		globalThis.okVal = null;
		import('./ok.js').then((m) => { globalThis.okVal = m.value; });
	`)
	env.queue.Drain()
	env.flushMicrotasks()
	assert.Equal(t, "7", env.global("okVal"))

	// The failure was caught script-side; nothing is uncaught.
	assert.Empty(t, env.delegate.reports)
}

func TestDynamicImportOfVirtualModule(t *testing.T) {
	env := newTestEnv(t, t.TempDir())
	env.session.ExecuteScript(`
		globalThis.fmt = null;
		import('--console').then((m) => { globalThis.fmt = typeof m.format; });
	`)
	env.queue.Drain()
	env.flushMicrotasks()
	assert.Equal(t, "function", env.global("fmt"))
	assert.Zero(t, env.totalReads())
}
