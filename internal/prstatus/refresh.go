package prstatus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

const DefaultThrottle = 30 * time.Second

// Target identifies the branch whose pull request is wanted.
type Target struct {
	GitDir    string
	WorkDir   string
	Branch    string
	OriginURL string
}

type Options struct {
	Dir      cachedir.Dir
	Cache    *Cache
	Throttle time.Duration
	// GhPath is the gh executable, empty when gh is not installed.
	GhPath string
	Client *Client
	Tokens TokenChain
	Logger *slog.Logger
}

// Dispatcher serves PR data from the cache and schedules at most one
// refresh per throttle window when the cache is stale.
type Dispatcher struct {
	dir      cachedir.Dir
	cache    *Cache
	throttle time.Duration
	ghPath   string
	client   *Client
	tokens   TokenChain
	log      *slog.Logger

	useScript bool
	spawn     func(scriptPath string) error
	now       func() time.Time
}

func NewDispatcher(o Options) *Dispatcher {
	log := o.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	throttle := o.Throttle
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Dispatcher{
		dir:       o.Dir,
		cache:     o.Cache,
		throttle:  throttle,
		ghPath:    o.GhPath,
		client:    o.Client,
		tokens:    o.Tokens,
		log:       log,
		useScript: scriptSupported && o.GhPath != "",
		spawn:     spawnDetached,
		now:       time.Now,
	}
}

// Get returns PR data for t when the cache holds a fresh hit. On a stale
// entry it starts a refresh: a detached gh script when gh is available,
// otherwise a synchronous REST fetch whose result is returned if it lands.
func (d *Dispatcher) Get(ctx context.Context, t Target) (Info, bool) {
	if !d.dir.Enabled() || t.Branch == "" || t.Branch == "HEAD" {
		return Info{}, false
	}
	switch res := d.cache.Load(t.GitDir, t.Branch); res.State {
	case Hit:
		return res.Info, true
	case NoPR:
		return Info{}, false
	}

	if d.throttled(t) {
		return Info{}, false
	}
	d.markAttempt(t)

	owner, repo, err := ParseGitHubURL(t.OriginURL)
	if err != nil {
		d.log.Debug("skip pr refresh", "origin", t.OriginURL, "error", err)
		return Info{}, false
	}

	if d.useScript {
		if err := d.startScript(t); err != nil {
			d.log.Debug("pr refresh script failed", "error", err)
		}
		return Info{}, false
	}

	if d.client == nil {
		return Info{}, false
	}
	token, err := d.tokens.Token(ctx)
	if err != nil {
		d.log.Debug("skip pr refresh", "error", err)
		return Info{}, false
	}
	d.fetch(ctx, t, owner, repo, token)

	if res := d.cache.Load(t.GitDir, t.Branch); res.State == Hit {
		return res.Info, true
	}
	return Info{}, false
}

func (d *Dispatcher) throttled(t Target) bool {
	path, err := d.dir.PRAttempt(t.GitDir, t.Branch)
	if err != nil {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	// A marker dated in the future never throttles.
	age := d.now().Sub(info.ModTime())
	return age >= 0 && age < d.throttle
}

func (d *Dispatcher) markAttempt(t Target) {
	path, err := d.dir.PRAttempt(t.GitDir, t.Branch)
	if err != nil {
		return
	}
	if err := cachedir.WriteAtomic(path, nil); err != nil {
		d.log.Debug("mark pr attempt", "error", err)
	}
}

func (d *Dispatcher) startScript(t Target) error {
	cachePath, err := d.dir.PR(t.GitDir, t.Branch)
	if err != nil {
		return err
	}
	scriptPath, err := writeScript(d.dir, refreshScript{
		WorkDir:   t.WorkDir,
		GhPath:    d.ghPath,
		Branch:    t.Branch,
		CachePath: cachePath,
		TempPath:  cachedir.TempPath(cachePath),
		Timestamp: d.now().Unix(),
	})
	if err != nil {
		return err
	}
	if err := d.spawn(scriptPath); err != nil {
		_ = os.Remove(scriptPath)
		return err
	}
	d.log.Debug("pr refresh script started", "branch", t.Branch)
	return nil
}

func (d *Dispatcher) fetch(ctx context.Context, t Target, owner, repo, token string) {
	payload, err := d.client.FetchPR(ctx, owner, repo, t.Branch, token)
	if err != nil {
		var statusErr *StatusError
		msg := err.Error()
		if errors.As(err, &statusErr) {
			msg = statusErr.Error()
		}
		d.log.Debug("pr fetch failed", "owner", owner, "repo", repo, "error", msg)
		d.logWrite(d.cache.WriteError(t.GitDir, t.Branch, msg))
		return
	}
	if payload == nil {
		d.logWrite(d.cache.WriteNoPR(t.GitDir, t.Branch))
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		d.logWrite(d.cache.WriteError(t.GitDir, t.Branch, err.Error()))
		return
	}
	d.logWrite(d.cache.WriteHit(t.GitDir, t.Branch, body))
}

func (d *Dispatcher) logWrite(err error) {
	if err != nil {
		d.log.Debug("write pr cache", "error", err)
	}
}
