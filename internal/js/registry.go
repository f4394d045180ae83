package js

import (
	"fmt"

	"github.com/grafana/sobek"
)

// registry is the authoritative map from canonical module path to compiled
// module handle. It guarantees at most one handle per path and also answers
// the reverse question the engine asks during instantiation: given the
// handle of a referring module, which path (and therefore which directory)
// does it belong to?
//
// Entries are never evicted; they live until the session closes. The
// registry has no lock of its own: it is mutated only under the session's
// entry lock.
type registry struct {
	byPath   map[string]sobek.ModuleRecord
	byModule map[sobek.ModuleRecord]string
}

func newRegistry() *registry {
	return &registry{
		byPath:   make(map[string]sobek.ModuleRecord),
		byModule: make(map[sobek.ModuleRecord]string),
	}
}

// get returns the compiled module registered for path, if any.
func (r *registry) get(path string) (sobek.ModuleRecord, bool) {
	mod, ok := r.byPath[path]
	return mod, ok
}

// insert registers a freshly compiled module under its canonical path.
// Call sites must check get first; registering a path twice is a bug.
func (r *registry) insert(path string, mod sobek.ModuleRecord) error {
	if _, ok := r.byPath[path]; ok {
		return fmt.Errorf("module already registered: %s", path)
	}
	if _, ok := r.byModule[mod]; ok {
		return fmt.Errorf("module handle already registered under another path: %s", path)
	}
	r.byPath[path] = mod
	r.byModule[mod] = path
	return nil
}

// pathFor returns the canonical path a compiled module was registered under.
func (r *registry) pathFor(mod sobek.ModuleRecord) (string, bool) {
	path, ok := r.byModule[mod]
	return path, ok
}

// size returns the number of registered modules.
func (r *registry) size() int {
	return len(r.byPath)
}

// clear drops every registration. Used only at session teardown, before the
// engine runtime itself is released.
func (r *registry) clear() {
	r.byPath = make(map[string]sobek.ModuleRecord)
	r.byModule = make(map[sobek.ModuleRecord]string)
}
