package cachedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const appName = "cc-statusline"

// Disabled is returned by Resolve when no directory could be trusted. Every
// file operation below it fails, which callers treat as a cache miss.
const Disabled = os.DevNull

var ErrCacheDisabled = errors.New("cache directory disabled")

// Options carries the environment Resolve works from.
type Options struct {
	XDGCacheHome string
	Home         string
	TempDir      string
	UID          int
}

// DefaultOptions reads the process environment.
func DefaultOptions(home string) Options {
	return Options{
		XDGCacheHome: strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")),
		Home:         home,
		TempDir:      os.TempDir(),
		UID:          currentUID(),
	}
}

type candidate struct {
	name string
	path func(Options) (string, bool)
}

// candidates lists cache roots in preference order. The first one that can be
// created and is owned by the current user wins.
var candidates = []candidate{
	{name: "xdg", path: func(o Options) (string, bool) {
		if o.XDGCacheHome == "" {
			return "", false
		}
		return filepath.Join(o.XDGCacheHome, appName), true
	}},
	{name: "home", path: func(o Options) (string, bool) {
		if o.Home == "" {
			return "", false
		}
		return filepath.Join(o.Home, ".cache", appName), true
	}},
	{name: "tmp", path: func(o Options) (string, bool) {
		if o.TempDir == "" {
			return "", false
		}
		return filepath.Join(o.TempDir, appName+"-"+strconv.Itoa(o.UID)), true
	}},
}

// Resolve picks the cache directory. It returns Disabled when every candidate
// is missing, uncreatable or owned by someone else.
func Resolve(o Options) Dir {
	for _, c := range candidates {
		path, ok := c.path(o)
		if !ok {
			continue
		}
		if err := prepare(path, o.UID); err != nil {
			continue
		}
		return Dir(path)
	}
	return Dir(Disabled)
}

func prepare(path string, uid int) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return err
	}
	_ = os.Chmod(path, 0o700)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if !ownedBy(info, uid) {
		return fmt.Errorf("%s is not owned by uid %d", path, uid)
	}
	return nil
}

// Dir is a resolved cache directory.
type Dir string

func (d Dir) Path() string { return string(d) }

func (d Dir) Enabled() bool {
	return d != "" && string(d) != Disabled
}

func (d Dir) file(name string) (string, error) {
	if !d.Enabled() {
		return "", ErrCacheDisabled
	}
	return filepath.Join(string(d), name), nil
}

// GitLocation is the repository location record for a working directory.
func (d Dir) GitLocation(workingDir string) (string, error) {
	return d.file(fmt.Sprintf("gitpath-%016x.cache", Hash(workingDir)))
}

// Status is the working tree stats record for a git metadata directory.
func (d Dir) Status(gitDir string) (string, error) {
	return d.file(fmt.Sprintf("status-%016x.cache", Hash(gitDir)))
}

// PR is the pull request record for a repository and branch.
func (d Dir) PR(gitDir, branch string) (string, error) {
	return d.file(fmt.Sprintf("pr-%016x.cache", Hash(prKey(gitDir, branch))))
}

// PRAttempt is the refresh throttle marker for a repository and branch.
func (d Dir) PRAttempt(gitDir, branch string) (string, error) {
	return d.file(fmt.Sprintf("pr-attempt-%016x", Hash(prKey(gitDir, branch))))
}

// Script names a one-shot refresh script.
func (d Dir) Script() (string, error) {
	return d.file("pr-refresh-" + UniqueSuffix() + ".sh")
}

func prKey(gitDir, branch string) string {
	return gitDir + ":" + branch
}

// KnownPrefixes are the file name prefixes this program writes into the cache
// directory. Anything else found there is left alone.
var KnownPrefixes = []string{"gitpath-", "status-", "pr-", "debug.log", "debug-"}

// Owns reports whether name looks like a file written by this program.
func Owns(name string) bool {
	for _, p := range KnownPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
