package js

import (
	"fmt"

	"github.com/grafana/sobek"
)

// InvalidSpecifierError rejects an import that is neither relative nor a
// reserved virtual module token. The message format is part of the host's
// script-visible contract.
type InvalidSpecifierError struct {
	Specifier string
}

func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("Invalid module name: '%s'. Valid imports must begin with ./ or ../", e.Specifier)
}

// UnknownVirtualModuleError rejects a name that uses the virtual-module
// prefix but is not one of the registered tokens.
type UnknownVirtualModuleError struct {
	Name string
}

func (e *UnknownVirtualModuleError) Error() string {
	return "Invalid module name: " + e.Name
}

// SourceUnavailableError wraps a failed source read for a module, together
// with the chain of module paths that were being loaded at the time.
type SourceUnavailableError struct {
	Path  string
	Chain []string
	Err   error
}

func (e *SourceUnavailableError) Error() string { return e.Err.Error() }
func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// CompileError wraps an engine parse failure for a module, together with the
// load chain at the time of failure.
type CompileError struct {
	Path  string
	Chain []string
	Err   error
}

func (e *CompileError) Error() string { return e.Err.Error() }
func (e *CompileError) Unwrap() error { return e.Err }

// LinkError reports that a fully loaded graph could not be instantiated:
// an unresolved binding or an inconsistency between loader and engine.
type LinkError struct {
	Err error
}

func (e *LinkError) Error() string { return "module instantiation failed: " + e.Err.Error() }
func (e *LinkError) Unwrap() error { return e.Err }

// ScriptError carries a value thrown by script code: a synchronous evaluation
// failure or an already-rejected top-level completion.
type ScriptError struct {
	Value sobek.Value
}

func (e *ScriptError) Error() string {
	if e.Value == nil {
		return "uncaught exception"
	}
	return e.Value.String()
}

// chained is implemented by load-time errors that captured the diagnostic
// chain of module paths being loaded when they occurred.
type chained interface {
	loadChain() []string
}

func (e *SourceUnavailableError) loadChain() []string { return e.Chain }
func (e *CompileError) loadChain() []string           { return e.Chain }

// cloneChain snapshots the loader's mutable load stack into an error.
func cloneChain(chain []string) []string {
	out := make([]string, len(chain))
	copy(out, chain)
	return out
}
