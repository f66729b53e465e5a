package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrbonezy/cc-statusline/internal/prstatus"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	for _, name := range []string{
		"CC_STATUSLINE_WIDTH",
		"CC_STATUSLINE_THEME",
		"CC_STATUSLINE_NO_PR",
		"CC_STATUSLINE_DEBUG",
		"CC_STATUSLINE_GITHUB_API",
		"NO_COLOR",
	} {
		t.Setenv(name, "")
	}
	prev := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = prev })
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, filepath.Join(home, ".config", "cc-statusline", "config.toml"), cfg.ConfigPath)
	assert.Equal(t, filepath.Join(home, ".cache", "cc-statusline"), cfg.CacheDir.Path())
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, ThemeBright, cfg.Theme)
	assert.True(t, cfg.PREnabled)
	assert.Equal(t, time.Minute, cfg.PRTTL)
	assert.Equal(t, 5*time.Minute, cfg.NoPRTTL)
	assert.Equal(t, 30*time.Second, cfg.Throttle)
	assert.Equal(t, DefaultGitHubAPI, cfg.GitHubAPI)
	assert.Equal(t, prstatus.DefaultThrottle, cfg.Throttle)
	assert.Equal(t, prstatus.DefaultAPIBase, cfg.GitHubAPI)
	assert.Empty(t, cfg.GhPath)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.NoColor)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := isolate(t)
	off := false
	require.NoError(t, Save(Path(home), File{
		Theme:              "DIM",
		Width:              80,
		PR:                 &off,
		GitHubAPI:          "https://ghe.example.com/api/v3",
		HTTPTimeoutSeconds: 9,
	}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDim, cfg.Theme)
	assert.Equal(t, 80, cfg.Width)
	assert.False(t, cfg.PREnabled)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHubAPI)
	assert.Equal(t, 9*time.Second, cfg.HTTPTimeout)

	t.Setenv("CC_STATUSLINE_WIDTH", "120")
	t.Setenv("CC_STATUSLINE_THEME", "bright")
	t.Setenv("CC_STATUSLINE_DEBUG", "yes")
	t.Setenv("NO_COLOR", "1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, ThemeBright, cfg.Theme)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.NoColor)
}

func TestLoad_EnvIgnoresInvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("CC_STATUSLINE_WIDTH", "-3")
	t.Setenv("CC_STATUSLINE_THEME", "neon")
	t.Setenv("CC_STATUSLINE_NO_PR", "nope")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, ThemeBright, cfg.Theme)
	assert.True(t, cfg.PREnabled)
}

func TestLoad_NoPREnv(t *testing.T) {
	isolate(t)
	t.Setenv("CC_STATUSLINE_NO_PR", "ON")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.PREnabled)
}

func TestLoad_BrokenFileKeepsDefaults(t *testing.T) {
	home := isolate(t)
	path := Path(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("width = ["), 0o644))
	t.Setenv("CC_STATUSLINE_WIDTH", "70")

	cfg, err := Load()
	require.Error(t, err)
	assert.Equal(t, 70, cfg.Width)
	assert.Equal(t, ThemeBright, cfg.Theme)
}

func TestLoad_FindsGh(t *testing.T) {
	isolate(t)
	lookPath = func(name string) (string, error) { return "/opt/bin/" + name, nil }
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/gh", cfg.GhPath)
}

func TestPath_PrefersXDG(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, filepath.Join(xdg, "cc-statusline", "config.toml"), Path("/home/x"))

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Equal(t, "", Path(""))
}

func TestReadFile_Missing(t *testing.T) {
	file, err := ReadFile(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, File{}, file)
}

func TestSave_RoundTripsPointerFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	on := true
	require.NoError(t, Save(path, File{Theme: ThemeDim, PR: &on}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theme = "dim"`)
	assert.NotContains(t, string(data), "width")
	assert.NotContains(t, string(data), "http_timeout_seconds")

	file, err := ReadFile(path)
	require.NoError(t, err)
	require.NotNil(t, file.PR)
	assert.True(t, *file.PR)
}

func TestSave_WritesNonZeroInts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(path, File{Width: 80, HTTPTimeoutSeconds: 9}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "width = 80")
	assert.Contains(t, string(data), "http_timeout_seconds = 9")

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, File{Width: 80, HTTPTimeoutSeconds: 9}, file)
}

func TestEnvFlagEnabled(t *testing.T) {
	tests := map[string]bool{
		"1":     true,
		"true":  true,
		" YES ": true,
		"on":    true,
		"0":     false,
		"off":   false,
		"":      false,
	}
	for value, want := range tests {
		t.Setenv("CC_STATUSLINE_TEST_FLAG", value)
		assert.Equal(t, want, envFlagEnabled("CC_STATUSLINE_TEST_FLAG"), value)
	}
}
