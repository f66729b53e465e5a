// Package config builds the immutable runtime settings from defaults, the
// TOML config file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
	"github.com/mrbonezy/cc-statusline/internal/prstatus"
)

const (
	ThemeBright = "bright"
	ThemeDim    = "dim"

	DefaultWidth       = 50
	DefaultPRTTL       = 60 * time.Second
	DefaultNoPRTTL     = 300 * time.Second
	DefaultThrottle    = prstatus.DefaultThrottle
	DefaultHTTPTimeout = 5 * time.Second
	DefaultGitHubAPI   = prstatus.DefaultAPIBase
)

// File is the on-disk config.toml.
type File struct {
	Theme              string `toml:"theme,omitempty"`
	Width              int    `toml:"width,omitzero"`
	PR                 *bool  `toml:"pr,omitempty"`
	Debug              bool   `toml:"debug,omitempty"`
	GitHubAPI          string `toml:"github_api,omitempty"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds,omitzero"`
}

// Config is resolved once per process and passed down by value.
type Config struct {
	Home       string
	ConfigPath string
	CacheDir   cachedir.Dir

	Width int
	Theme string

	PREnabled   bool
	PRTTL       time.Duration
	NoPRTTL     time.Duration
	Throttle    time.Duration
	HTTPTimeout time.Duration
	GitHubAPI   string
	// GhPath is empty when gh is not on PATH.
	GhPath string

	Debug   bool
	NoColor bool
}

var lookPath = exec.LookPath

// Load resolves the config. A broken config file is reported but the
// returned Config still holds defaults and environment overrides, so
// callers can keep rendering.
func Load() (Config, error) {
	home := homeDir()
	cfg := Config{
		Home:        home,
		Width:       DefaultWidth,
		Theme:       ThemeBright,
		PREnabled:   true,
		PRTTL:       DefaultPRTTL,
		NoPRTTL:     DefaultNoPRTTL,
		Throttle:    DefaultThrottle,
		HTTPTimeout: DefaultHTTPTimeout,
		GitHubAPI:   DefaultGitHubAPI,
	}

	var fileErr error
	cfg.ConfigPath = Path(home)
	if cfg.ConfigPath != "" {
		file, err := ReadFile(cfg.ConfigPath)
		if err != nil {
			fileErr = err
		} else {
			cfg.applyFile(file)
		}
	}
	cfg.applyEnv()

	if path, err := lookPath("gh"); err == nil {
		cfg.GhPath = path
	}
	cfg.CacheDir = cachedir.Resolve(cachedir.DefaultOptions(home))
	return cfg, fileErr
}

// Path is the config file location, or "" when neither XDG_CONFIG_HOME nor
// a home directory is known.
func Path(home string) string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "cc-statusline", "config.toml")
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "cc-statusline", "config.toml")
}

// ReadFile parses path. A missing file is an empty File.
func ReadFile(path string) (File, error) {
	var file File
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return file, err
	}
	if _, err := toml.Decode(string(data), &file); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return file, nil
}

// Save writes file to path atomically, creating the parent directory.
func Save(path string, file File) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path unknown")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(file); err != nil {
		return err
	}
	return cachedir.WriteAtomic(path, buf.Bytes())
}

func (c *Config) applyFile(f File) {
	if theme, ok := normalizeTheme(f.Theme); ok {
		c.Theme = theme
	}
	if f.Width > 0 {
		c.Width = f.Width
	}
	if f.PR != nil {
		c.PREnabled = *f.PR
	}
	if f.Debug {
		c.Debug = true
	}
	if api := strings.TrimSpace(f.GitHubAPI); api != "" {
		c.GitHubAPI = api
	}
	if f.HTTPTimeoutSeconds > 0 {
		c.HTTPTimeout = time.Duration(f.HTTPTimeoutSeconds) * time.Second
	}
}

func (c *Config) applyEnv() {
	if width, err := strconv.Atoi(strings.TrimSpace(os.Getenv("CC_STATUSLINE_WIDTH"))); err == nil && width > 0 {
		c.Width = width
	}
	if theme, ok := normalizeTheme(os.Getenv("CC_STATUSLINE_THEME")); ok {
		c.Theme = theme
	}
	if envFlagEnabled("CC_STATUSLINE_NO_PR") {
		c.PREnabled = false
	}
	if envFlagEnabled("CC_STATUSLINE_DEBUG") {
		c.Debug = true
	}
	if api := strings.TrimSpace(os.Getenv("CC_STATUSLINE_GITHUB_API")); api != "" {
		c.GitHubAPI = api
	}
	if os.Getenv("NO_COLOR") != "" {
		c.NoColor = true
	}
}

func normalizeTheme(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ThemeBright:
		return ThemeBright, true
	case ThemeDim:
		return ThemeDim, true
	default:
		return "", false
	}
}

func homeDir() string {
	if home := strings.TrimSpace(os.Getenv("HOME")); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
