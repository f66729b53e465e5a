package gitstate

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

// Location is where a working directory's repository lives, valid while the
// HEAD file keeps the recorded modification time.
type Location struct {
	GitDir    string
	Branch    string
	HeadMtime uint64
}

// LocationCache remembers discovery results per working directory in
// gitpath-<hash>.cache files of three lines: git dir, branch, HEAD mtime.
type LocationCache struct {
	dir cachedir.Dir
	log *slog.Logger
}

func NewLocationCache(dir cachedir.Dir, log *slog.Logger) LocationCache {
	return LocationCache{dir: dir, log: log}
}

// Lookup returns the cached location for workingDir. Records pointing at a
// vanished repository are deleted; a HEAD mtime mismatch is just a miss.
func (c LocationCache) Lookup(workingDir string) (Location, bool) {
	path, err := c.dir.GitLocation(workingDir)
	if err != nil {
		return Location{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Location{}, false
	}
	loc, ok := parseLocation(string(data))
	if !ok {
		return Location{}, false
	}
	if _, err := os.Stat(loc.GitDir); err != nil {
		_ = os.Remove(path)
		return Location{}, false
	}
	if HeadMtime(loc.GitDir) != loc.HeadMtime {
		return Location{}, false
	}
	return loc, true
}

func parseLocation(content string) (Location, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) < 3 {
		return Location{}, false
	}
	gitDir, branch := lines[0], lines[1]
	if gitDir == "" || branch == "" {
		return Location{}, false
	}
	mtime, err := strconv.ParseUint(strings.TrimSpace(lines[2]), 10, 64)
	if err != nil {
		return Location{}, false
	}
	return Location{GitDir: gitDir, Branch: branch, HeadMtime: mtime}, true
}

// Store records gitDir and branch for workingDir with the current HEAD mtime.
func (c LocationCache) Store(workingDir, gitDir, branch string) error {
	path, err := c.dir.GitLocation(workingDir)
	if err != nil {
		return err
	}
	content := fmt.Sprintf("%s\n%s\n%d", gitDir, branch, HeadMtime(gitDir))
	return cachedir.WriteAtomic(path, []byte(content))
}

// Locate finds the repository for dir, preferring the location cache over a
// discovery walk and refreshing the cache after a walk.
func (c LocationCache) Locate(dir string) (*Repo, error) {
	if loc, ok := c.Lookup(dir); ok {
		repo, err := Open(loc.GitDir, loc.Branch)
		if err == nil {
			return repo, nil
		}
		c.log.Debug("cached location unusable", "dir", dir, "git_dir", loc.GitDir, "error", err)
	}
	repo, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	// A record Open cannot map back to a checkout would miss on every run.
	if _, err := workDirForGitDir(repo.GitDir); err != nil {
		return repo, nil
	}
	if err := c.Store(dir, repo.GitDir, repo.Branch); err != nil {
		c.log.Debug("store location", "dir", dir, "error", err)
	}
	return repo, nil
}
