// Package config loads the optional HCL settings file and defines the
// layering rules between command-line flags, file settings, and built-in
// defaults.
package config
