// Package js embeds the script engine and layers an ES-module loader on top
// of it.
//
// # What lives here
//
// A Session owns one engine runtime plus all module state: the registry of
// compiled modules, the table of in-flight dynamic imports, and the base path
// that relative imports resolve against. The loader walks a module's static
// import graph depth-first, compiling and registering each module exactly
// once; the engine then links the graph against the registry and evaluates
// the root, which may complete synchronously or settle later as a promise.
//
// # Import rules
//
// Import specifiers must be relative ("./" or "../") or one of the reserved
// virtual module tokens served from embedded resources. Bare names, absolute
// paths, and URLs are rejected before any filesystem access.
//
// # Concurrency
//
// Script execution is single-threaded and cooperative. The Session's entry
// lock is acquired at every external entry point into the engine: inline
// script execution, the main-module load, and each deferred dynamic-import
// task. Dynamic imports never perform their load inside the engine callback
// that requested them; the work is posted to the host task queue and happens
// on a later turn.
package js
