package js

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSpecifierRelative(t *testing.T) {
	cases := []struct {
		name        string
		referrerDir string
		specifier   string
		want        string
	}{
		{"sibling", "/base/dir", "./x.js", "/base/dir/x.js"},
		{"parent", "/base/dir", "../x.js", "/base/x.js"},
		{"nested", "/base", "./lib/util.js", "/base/lib/util.js"},
		{"normalized", "/base/dir", "./a/../b.js", "/base/dir/b.js"},
		{"double parent", "/base/a/b", "../../c.js", "/base/c.js"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveSpecifier(tc.referrerDir, tc.specifier)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSpecifierEquivalentFormsCanonicalize(t *testing.T) {
	a, err := resolveSpecifier("/base/dir", "./x.js")
	require.NoError(t, err)
	b, err := resolveSpecifier("/base/dir", "./sub/../x.js")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveSpecifierRejectsNonRelative(t *testing.T) {
	for _, specifier := range []string{"lodash", "/abs/x.js", "https://example.com/x.js", "x.js", ""} {
		t.Run(specifier, func(t *testing.T) {
			_, err := resolveSpecifier("/base", specifier)
			require.Error(t, err)

			var invalid *InvalidSpecifierError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, specifier, invalid.Specifier)
			assert.Contains(t, err.Error(), "'"+specifier+"'")
			assert.Contains(t, err.Error(), "Valid imports must begin with ./ or ../")
		})
	}
}

func TestResolveSpecifierVirtual(t *testing.T) {
	got, err := resolveSpecifier("/anywhere", "--console")
	require.NoError(t, err)
	assert.Equal(t, "--console", got)

	got, err = resolveSpecifier("/elsewhere", "--welcome")
	require.NoError(t, err)
	assert.Equal(t, "--welcome", got)
}

func TestResolveSpecifierUnknownVirtual(t *testing.T) {
	_, err := resolveSpecifier("/base", "--bogus")
	require.Error(t, err)

	var unknown *UnknownVirtualModuleError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "--bogus", unknown.Name)
}
