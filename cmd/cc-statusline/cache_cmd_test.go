package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

func seedCache(t *testing.T) cachedir.Dir {
	t.Helper()
	dir := cachedir.Dir(t.TempDir())
	old := time.Now().Add(-2 * time.Hour)
	for name, size := range map[string]int{
		"status-0000000000000001.cache":  128,
		"pr-0000000000000002.cache":      2048,
		"gitpath-0000000000000003.cache": 10,
		"notes.txt":                      5,
	} {
		path := filepath.Join(dir.Path(), name)
		require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o600))
		require.NoError(t, os.Chtimes(path, old, old))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir.Path(), "pr-subdir"), 0o700))
	return dir
}

func TestListCache(t *testing.T) {
	dir := seedCache(t)
	var out bytes.Buffer
	require.NoError(t, listCache(&out, dir, time.Now()))

	text := out.String()
	assert.Contains(t, text, "status-0000000000000001.cache")
	assert.Contains(t, text, "128 B")
	assert.Contains(t, text, "2.0 kB")
	assert.Contains(t, text, "2 hours ago")
	assert.Contains(t, text, "3 FILES")
	assert.NotContains(t, text, "notes.txt")
	assert.NotContains(t, text, "pr-subdir")
}

func TestListCache_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listCache(&out, cachedir.Dir(t.TempDir()), time.Now()))
	assert.Equal(t, "cache is empty\n", out.String())
}

func TestClearCache_KeepsForeignFiles(t *testing.T) {
	dir := seedCache(t)
	removed, err := clearCache(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	entries, err := os.ReadDir(dir.Path())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"notes.txt", "pr-subdir"}, names)
}
