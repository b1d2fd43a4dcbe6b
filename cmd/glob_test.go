// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExcludes_ByName(t *testing.T) {
	paths := []string{
		"src/main.lox",
		"src/generated.lox",
		"lib/utils.lox",
	}
	result := filterExcludes(paths, []string{"generated.lox"})
	assert.Equal(t, []string{"src/main.lox", "lib/utils.lox"}, result)
}

func TestFilterExcludes_ByDirectory(t *testing.T) {
	paths := []string{
		"src/main.lox",
		"build/output.lox",
		"build/sub/deep.lox",
		"lib/utils.lox",
	}
	result := filterExcludes(paths, []string{"build"})
	assert.Equal(t, []string{"src/main.lox", "lib/utils.lox"}, result)
}

func TestFilterExcludes_GlobPattern(t *testing.T) {
	paths := []string{
		"src/main.lox",
		"src/generated_foo.lox",
		"src/generated_bar.lox",
		"lib/utils.lox",
	}
	result := filterExcludes(paths, []string{"generated_*"})
	assert.Equal(t, []string{"src/main.lox", "lib/utils.lox"}, result)
}

func TestFilterExcludes_NoMatches(t *testing.T) {
	paths := []string{"src/main.lox", "lib/utils.lox"}
	result := filterExcludes(paths, []string{"vendor"})
	assert.Equal(t, paths, result)
}

func TestFilterExcludes_EmptyExcludes(t *testing.T) {
	paths := []string{"src/main.lox"}
	result := filterExcludes(paths, nil)
	assert.Equal(t, []string{"src/main.lox"}, result)
}

func TestMatchesAny_FullPath(t *testing.T) {
	assert.True(t, matchesAny("src/main.lox", []string{"src/*.lox"}))
	assert.False(t, matchesAny("lib/main.lox", []string{"src/*.lox"}))
}

func TestMatchesAny_BaseName(t *testing.T) {
	assert.True(t, matchesAny("deep/nested/generated.lox", []string{"generated.lox"}))
}

func TestMatchesAny_Component(t *testing.T) {
	assert.True(t, matchesAny("project/build/output.lox", []string{"build"}))
	assert.False(t, matchesAny("project/src/output.lox", []string{"build"}))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.lox"}, splitPath("a/b/c.lox"))
	assert.Equal(t, []string{"a", "c.lox"}, splitPath("a/./b/../c.lox"))
}

func TestExpandArgs_Recursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "build"), 0o755))
	for _, name := range []string{"a.lox", "sub/b.lox", "sub/build/c.lox", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("print 1;\n"), 0o600))
	}

	files, err := expandArgs([]string{dir + "/...", "other.lox"}, []string{"build"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.lox"),
		filepath.Join(dir, "sub", "b.lox"),
		"other.lox",
	}, files)
}

func TestExpandArgs_MissingDirectory(t *testing.T) {
	_, err := expandArgs([]string{filepath.Join(t.TempDir(), "missing") + "/..."}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expanding")
}
