// Package prstatus caches pull request metadata per repository and branch
// and refreshes it in the background through gh or the GitHub REST API.
package prstatus

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

const (
	noPRMarker  = "NO_PR"
	errorPrefix = "ERROR:"
)

// State is the outcome of reading a PR cache entry.
type State int

const (
	// Stale means absent, malformed, expired or error marked. It asks for a
	// refresh.
	Stale State = iota
	// Hit carries valid PR data.
	Hit
	// NoPR is a confirmed absence of a pull request for the branch.
	NoPR
)

func (s State) String() string {
	switch s {
	case Hit:
		return "hit"
	case NoPR:
		return "no-pr"
	default:
		return "stale"
	}
}

// Info is what the PR row shows.
type Info struct {
	Number       uint32
	State        string
	URL          string
	Comments     uint32
	ChangedFiles uint32
	// CheckStatus is "passed", "failed", "pending" or "".
	CheckStatus string
}

// Result is a cache read.
type Result struct {
	State State
	Info  Info
}

// Cache reads and writes pr-<hash>.cache files. Line one is the unix write
// time, line two the branch, and the rest is a JSON payload, NO_PR or
// ERROR:<message>.
type Cache struct {
	dir         cachedir.Dir
	ttl         time.Duration
	negativeTTL time.Duration
	now         func() time.Time
}

func NewCache(dir cachedir.Dir, ttl, negativeTTL time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl, negativeTTL: negativeTTL, now: time.Now}
}

// Load classifies the entry for gitDir and branch. An entry written for a
// different branch is removed.
func (c *Cache) Load(gitDir, branch string) Result {
	path, err := c.dir.PR(gitDir, branch)
	if err != nil {
		return Result{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}
	}
	parts := strings.SplitN(string(data), "\n", 3)
	if len(parts) < 2 {
		return Result{}
	}
	written, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Result{}
	}
	if parts[1] != branch {
		_ = os.Remove(path)
		return Result{}
	}
	body := ""
	if len(parts) == 3 {
		body = parts[2]
	}

	age := time.Duration(c.now().Unix()-written) * time.Second
	if age < 0 {
		age = 0
	}
	switch {
	case body == noPRMarker:
		if age < c.negativeTTL {
			return Result{State: NoPR}
		}
		return Result{}
	case strings.HasPrefix(body, errorPrefix):
		return Result{}
	case age > c.ttl:
		return Result{}
	}

	info, ok := parsePayload(body)
	if !ok {
		return Result{}
	}
	return Result{State: Hit, Info: info}
}

// cachedPR accepts both gh output, where comments is an array, and the
// payload written by the REST fetch, which stores commentsCount.
type cachedPR struct {
	Number            *uint64           `json:"number"`
	State             string            `json:"state"`
	URL               string            `json:"url"`
	Comments          []json.RawMessage `json:"comments"`
	CommentsCount     *uint64           `json:"commentsCount"`
	ChangedFiles      uint64            `json:"changedFiles"`
	StatusCheckRollup []CheckRun        `json:"statusCheckRollup"`
}

func parsePayload(body string) (Info, bool) {
	var pr cachedPR
	if err := json.Unmarshal([]byte(body), &pr); err != nil {
		return Info{}, false
	}
	if pr.Number == nil || *pr.Number == 0 || pr.State == "" || pr.URL == "" {
		return Info{}, false
	}
	comments := uint64(len(pr.Comments))
	if pr.CommentsCount != nil {
		comments = *pr.CommentsCount
	}
	return Info{
		Number:       clampU32(*pr.Number),
		State:        pr.State,
		URL:          pr.URL,
		Comments:     clampU32(comments),
		ChangedFiles: clampU32(pr.ChangedFiles),
		CheckStatus:  CheckStatus(pr.StatusCheckRollup),
	}, true
}

func clampU32(v uint64) uint32 {
	if v > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

// WriteHit stores a PR payload as returned by gh or built by the REST fetch.
func (c *Cache) WriteHit(gitDir, branch string, payload []byte) error {
	return c.write(gitDir, branch, string(payload))
}

// WriteNoPR stores a negative entry.
func (c *Cache) WriteNoPR(gitDir, branch string) error {
	return c.write(gitDir, branch, noPRMarker)
}

// WriteError stores an error marker, which always reads back as Stale.
func (c *Cache) WriteError(gitDir, branch, message string) error {
	return c.write(gitDir, branch, errorPrefix+message)
}

func (c *Cache) write(gitDir, branch, body string) error {
	path, err := c.dir.PR(gitDir, branch)
	if err != nil {
		return err
	}
	content := fmt.Sprintf("%d\n%s\n%s", c.now().Unix(), branch, body)
	return cachedir.WriteAtomic(path, []byte(content))
}
