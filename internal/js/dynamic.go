package js

import "github.com/grafana/sobek"

// importWaiter is one script-side import() call waiting on a pending load:
// the engine-owned triple needed to settle its promise capability.
type importWaiter struct {
	referrer   interface{}
	specifier  sobek.Value
	capability interface{}
}

// pendingImport tracks one in-flight dynamic import. At most one exists per
// module path: further requests for the same path join the waiter list
// instead of creating a second entry or a second deferred task, so every
// waiter settles to the same outcome.
type pendingImport struct {
	path    string
	waiters []importWaiter
}

// importModuleDynamically services import() requests from running script
// code. It is invoked by the engine from inside an entry point that already
// holds the entry lock, so it must not lock, and it must not reenter the
// engine beyond settling the promise capability.
//
// The actual load is always deferred to a future queue turn, even when the
// target is already registered; the engine is never reentered synchronously
// from within its own callback.
func (s *Session) importModuleDynamically(referrer interface{}, specifier sobek.Value, capability interface{}) {
	spec := specifier.String()

	// Inline scripts have no file-backed referrer; the base path stands in.
	dir := s.basePath
	if mod, ok := referrer.(sobek.ModuleRecord); ok {
		if path, ok := s.modules.pathFor(mod); ok {
			dir = s.moduleDir(path)
		}
	}

	path, err := resolveSpecifier(dir, spec)
	if err != nil {
		// Invalid specifiers reject synchronously; no task is posted.
		s.rt.FinishLoadingImportModule(referrer, specifier, capability, nil, err)
		return
	}

	waiter := importWaiter{referrer: referrer, specifier: specifier, capability: capability}
	if pending, ok := s.pending[path]; ok {
		pending.waiters = append(pending.waiters, waiter)
		return
	}

	s.pending[path] = &pendingImport{path: path, waiters: []importWaiter{waiter}}
	s.queue.Post(func() { s.runDeferredImport(path) })
}

// runDeferredImport performs the load for a pending dynamic import. It runs
// from the task queue and is an entry point in its own right.
//
// The pending entry is removed before loading so that import() requests
// issued while this load runs start a fresh cycle. Failure settles only the
// waiters of this entry; other pending and future imports are unaffected.
func (s *Session) runDeferredImport(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[path]
	if !ok {
		return
	}
	delete(s.pending, path)

	mod, err := s.activate(path, false)
	for _, w := range pending.waiters {
		s.rt.FinishLoadingImportModule(w.referrer, w.specifier, w.capability, mod, err)
	}
}
