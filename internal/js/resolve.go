package js

import (
	"path/filepath"
	"strings"

	"github.com/vk/jshost/internal/resources"
)

// isRelativeSpecifier reports whether a specifier uses one of the two
// accepted relative forms.
func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// resolveSpecifier maps an import specifier to a canonical module path.
//
// Resolution is purely lexical: relative specifiers are joined onto the
// referrer's directory and normalized, producing the registry key for the
// target module. Reserved virtual tokens resolve to themselves. Anything
// else fails without touching the filesystem.
func resolveSpecifier(referrerDir, specifier string) (string, error) {
	if resources.IsVirtual(specifier) {
		if resources.IsReserved(specifier) {
			return specifier, nil
		}
		return "", &UnknownVirtualModuleError{Name: specifier}
	}
	if !isRelativeSpecifier(specifier) {
		return "", &InvalidSpecifierError{Specifier: specifier}
	}
	return filepath.Clean(filepath.Join(referrerDir, specifier)), nil
}

// moduleDir returns the directory that relative imports declared by the
// module at path resolve against. Virtual modules have no directory of their
// own; they borrow the session's base path.
func (s *Session) moduleDir(path string) string {
	if resources.IsVirtual(path) {
		return s.basePath
	}
	return filepath.Dir(path)
}
