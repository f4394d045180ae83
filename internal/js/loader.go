package js

import (
	"errors"
	"fmt"

	"github.com/grafana/sobek"

	"github.com/vk/jshost/internal/resources"
)

// activate loads the graph rooted at path, links it, and evaluates the root.
//
// Evaluation always yields a promise; synchronous module bodies surface as an
// already-settled one. A pending promise means the root has a top-level await
// still in flight: for the main module both outcomes funnel into
// OnMainModuleReady, for any other module only failures are observed here
// (success belongs to whoever requested the module).
func (s *Session) activate(path string, isMain bool) (sobek.ModuleRecord, error) {
	chain := []string{path}
	mod, err := s.loadModuleTree(path, &chain)
	if err != nil {
		return nil, err
	}

	if err := mod.Link(); err != nil {
		return nil, &LinkError{Err: err}
	}

	promise := mod.Evaluate(s.rt)
	switch promise.State() {
	case sobek.PromiseStateRejected:
		return nil, &ScriptError{Value: promise.Result()}
	case sobek.PromiseStatePending:
		if isMain {
			err = s.promiseThen(promise,
				func(sobek.Value) { s.delegate.OnMainModuleReady() },
				func(reason sobek.Value) {
					s.reportThrown(reason)
					s.delegate.OnMainModuleReady()
				})
		} else {
			err = s.promiseThen(promise, nil, func(reason sobek.Value) {
				s.reportThrown(reason)
			})
		}
		if err != nil {
			return nil, err
		}
	default:
		if isMain {
			s.delegate.OnMainModuleReady()
		}
	}
	return mod, nil
}

// loadModuleTree compiles path and, depth-first, every module it transitively
// imports, registering each exactly once.
//
// The registry check at the top terminates cycles and collapses diamond
// dependencies, which is why a module is registered before its imports are
// walked: a self-referential or mutually-recursive import finds the record
// already present and stops. chain is diagnostics only; it carries no
// identity or cycle-safety responsibilities.
//
// A failure anywhere leaves already-registered modules in place. A record
// means "compiled", not "successfully evaluated", so siblings that loaded
// before the failure stay valid.
func (s *Session) loadModuleTree(path string, chain *[]string) (sobek.ModuleRecord, error) {
	if mod, ok := s.modules.get(path); ok {
		return mod, nil
	}

	source, err := s.loadModuleSource(path, *chain)
	if err != nil {
		return nil, err
	}

	mod, err := sobek.ParseModule(path, source, s.resolveImportedModule)
	if err != nil {
		return nil, &CompileError{Path: path, Chain: cloneChain(*chain), Err: err}
	}

	if err := s.modules.insert(path, mod); err != nil {
		return nil, err
	}

	dir := s.moduleDir(path)
	for _, specifier := range mod.RequestedModules() {
		subPath, err := resolveSpecifier(dir, specifier)
		if err != nil {
			// An invalid specifier anywhere aborts the whole load.
			return nil, err
		}
		if _, ok := s.modules.get(subPath); ok {
			continue
		}
		*chain = append(*chain, subPath)
		_, err = s.loadModuleTree(subPath, chain)
		*chain = (*chain)[:len(*chain)-1]
		if err != nil {
			return nil, err
		}
	}

	return mod, nil
}

// loadModuleSource obtains the source text for path: embedded content for
// virtual modules, a filesystem read otherwise.
func (s *Session) loadModuleSource(path string, chain []string) (string, error) {
	if resources.IsVirtual(path) {
		src, err := resources.Source(path)
		if err != nil {
			return "", &UnknownVirtualModuleError{Name: path}
		}
		return string(src), nil
	}

	data, err := s.readFile(path)
	if err != nil {
		return "", &SourceUnavailableError{Path: path, Chain: cloneChain(chain), Err: err}
	}
	return string(data), nil
}

// resolveImportedModule answers the engine's per-import-edge lookups during
// instantiation: given the referring module's handle and a specifier, find
// the registered module that satisfies it. The loader registered the whole
// graph before Link, so a miss means loader and engine disagree about the
// graph, which is a bug.
func (s *Session) resolveImportedModule(referrer interface{}, specifier string) (sobek.ModuleRecord, error) {
	dir := s.basePath
	if mod, ok := referrer.(sobek.ModuleRecord); ok {
		if path, ok := s.modules.pathFor(mod); ok {
			dir = s.moduleDir(path)
		}
	}

	path, err := resolveSpecifier(dir, specifier)
	if err != nil {
		return nil, err
	}
	mod, ok := s.modules.get(path)
	if !ok {
		return nil, fmt.Errorf("module not registered: %s", path)
	}
	return mod, nil
}

// promiseThen attaches Go continuations to an engine promise by calling its
// then method. Either continuation may be nil.
func (s *Session) promiseThen(promise *sobek.Promise, onFulfilled, onRejected func(sobek.Value)) error {
	obj := s.rt.ToValue(promise).ToObject(s.rt)
	then, ok := sobek.AssertFunction(obj.Get("then"))
	if !ok {
		return errors.New("js: evaluation result has no then method")
	}

	wrap := func(fn func(sobek.Value)) sobek.Value {
		if fn == nil {
			return sobek.Undefined()
		}
		return s.rt.ToValue(func(call sobek.FunctionCall) sobek.Value {
			var arg sobek.Value = sobek.Undefined()
			if len(call.Arguments) > 0 {
				arg = call.Arguments[0]
			}
			fn(arg)
			return sobek.Undefined()
		})
	}

	_, err := then(obj, wrap(onFulfilled), wrap(onRejected))
	return err
}
