// Package resources holds the virtual modules compiled into the binary.
//
// Virtual modules are addressed by reserved tokens ("--console", "--welcome")
// instead of filesystem paths. Their sources are stored gzip-compressed in the
// binary and decompressed once, on first use.
package resources

import (
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// Prefix marks a module name as virtual. Any specifier starting with it
// bypasses filesystem resolution.
const Prefix = "--"

// Reserved virtual module tokens.
const (
	Console = Prefix + "console"
	Welcome = Prefix + "welcome"
)

//go:embed assets/console.js.gz assets/welcome.js.gz
var assets embed.FS

// byToken maps each reserved token to its compressed asset path.
var byToken = map[string]string{
	Console: "assets/console.js.gz",
	Welcome: "assets/welcome.js.gz",
}

var (
	mu     sync.Mutex
	cached = map[string][]byte{}
)

// IsVirtual reports whether name uses the virtual-module prefix. It says
// nothing about whether the token is actually registered; use Source for that.
func IsVirtual(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

// IsReserved reports whether name is one of the registered virtual tokens.
func IsReserved(name string) bool {
	_, ok := byToken[name]
	return ok
}

// Tokens returns the registered virtual module tokens in sorted order.
func Tokens() []string {
	tokens := make([]string, 0, len(byToken))
	for token := range byToken {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Source returns the decompressed source of a registered virtual module.
// Unknown tokens return an error without touching the filesystem.
func Source(token string) ([]byte, error) {
	asset, ok := byToken[token]
	if !ok {
		return nil, fmt.Errorf("unknown virtual module: %s", token)
	}

	mu.Lock()
	defer mu.Unlock()
	if src, ok := cached[token]; ok {
		return src, nil
	}

	compressed, err := assets.Open(asset)
	if err != nil {
		return nil, fmt.Errorf("embedded asset %s missing: %w", asset, err)
	}
	defer compressed.Close()

	zr, err := gzip.NewReader(compressed)
	if err != nil {
		return nil, fmt.Errorf("embedded asset %s is not gzip data: %w", asset, err)
	}
	defer zr.Close()

	src, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing embedded asset %s: %w", asset, err)
	}
	cached[token] = src
	return src, nil
}
