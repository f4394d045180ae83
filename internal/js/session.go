package js

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grafana/sobek"

	"github.com/vk/jshost/internal/resources"
)

// scriptResourceName is the resource name given to inline scripts. Dynamic
// imports issued by inline scripts have no file-backed referrer, so this name
// marks requests that should resolve against the session's base path.
const scriptResourceName = "<console>"

// Delegate receives host-visible events from the session. Implementations
// are foreign, already-synchronized collaborators; the session calls them
// while holding the entry lock.
type Delegate interface {
	// OnMainModuleReady fires once the main module has finished loading and
	// its top-level body has settled, whether or not it succeeded.
	OnMainModuleReady()

	// OnUncaughtException receives a formatted diagnostic for an exception
	// that no script code handled.
	OnUncaughtException(message string, stack []Frame)
}

// TaskQueue is the host's cooperative task queue. Post must never run the
// task synchronously.
type TaskQueue interface {
	Post(task func())
}

// Options configures a new Session.
type Options struct {
	// BasePath is the directory the main module name and inline-script
	// imports resolve against. Defaults to the working directory.
	BasePath string

	// Delegate receives session events. Required.
	Delegate Delegate

	// Queue is the host task queue deferred work is posted to. Required.
	Queue TaskQueue

	// Output receives console output from scripts. Defaults to os.Stdout.
	Output io.Writer

	// ReadFile loads module source bytes. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Session owns one engine runtime and all module state layered on it. All
// module state dies with the session: Close clears the registry and the
// pending-import table before releasing the runtime.
type Session struct {
	// mu is the entry lock. It is held across every external entry point
	// into the engine; everything below it is mutated only while it is held.
	mu sync.Mutex

	rt       *sobek.Runtime
	basePath string
	delegate Delegate
	queue    TaskQueue
	output   io.Writer
	readFile func(path string) ([]byte, error)

	modules *registry
	pending map[string]*pendingImport

	suppressNextResult bool
	started            time.Time
}

// NewSession creates a scripting context with an empty module registry.
func NewSession(opts Options) (*Session, error) {
	if opts.Delegate == nil {
		return nil, errors.New("js: Options.Delegate is required")
	}
	if opts.Queue == nil {
		return nil, errors.New("js: Options.Queue is required")
	}

	basePath := opts.BasePath
	if basePath == "" {
		basePath = "."
	}
	basePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	s := &Session{
		rt:       sobek.New(),
		basePath: basePath,
		delegate: opts.Delegate,
		queue:    opts.Queue,
		output:   output,
		readFile: readFile,
		modules:  newRegistry(),
		pending:  make(map[string]*pendingImport),
		started:  time.Now(),
	}
	s.rt.SetImportModuleDynamically(s.importModuleDynamically)
	s.installConsole()
	return s, nil
}

// Close tears down the session. Module records reference engine-owned
// handles, so the registry and pending-import table are cleared before the
// runtime reference is dropped. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]*pendingImport)
	s.modules.clear()
	s.rt = nil
}

// BasePath returns the directory the session resolves the main module and
// inline-script imports against.
func (s *Session) BasePath() string {
	return s.basePath
}

// Uptime returns seconds elapsed since the session was created, measured on
// the monotonic clock.
func (s *Session) Uptime() float64 {
	return time.Since(s.started).Seconds()
}

// SuppressNextScriptResult discards the result of the next ExecuteScript
// call. The flag is consumed by exactly one execution, successful or not.
func (s *Session) SuppressNextScriptResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressNextResult = true
}

// ExecuteScript runs source as a classic (non-module) script and returns its
// result rendered as a string, or nil if the script threw or the result was
// suppressed. Exceptions are reported through the delegate.
func (s *Session) ExecuteScript(source string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.rt.RunScript(scriptResourceName, source)
	if err != nil {
		s.suppressNextResult = false
		s.reportError(err)
		return nil
	}
	if s.suppressNextResult {
		s.suppressNextResult = false
		return nil
	}
	text := displayString(value)
	return &text
}

// FlushMicrotasks gives the engine an empty turn so queued promise reactions
// run. Hosts call it after draining the task queue, since settlements
// produced by deferred imports only reach script continuations on the next
// engine entry.
func (s *Session) FlushMicrotasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.rt.RunScript(scriptResourceName, "undefined")
}

// LoadMainModule loads, instantiates, and evaluates the module graph rooted
// at name, which is either a path relative to the base path or a virtual
// module token. Failures are reported through the delegate, and the delegate
// is always eventually told the main module is ready so the host is never
// left waiting.
func (s *Session) LoadMainModule(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var path string
	if resources.IsVirtual(name) {
		path = name
	} else {
		path = filepath.Clean(filepath.Join(s.basePath, name))
	}

	if _, err := s.activate(path, true); err != nil {
		s.reportError(err)
		s.delegate.OnMainModuleReady()
		return err
	}
	return nil
}

// displayString renders a script value for host output.
func displayString(value sobek.Value) string {
	if value == nil || sobek.IsUndefined(value) {
		return "undefined"
	}
	if sobek.IsNull(value) {
		return "null"
	}
	return value.String()
}
