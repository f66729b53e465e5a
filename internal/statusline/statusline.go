// Package statusline assembles the rows for one invocation: it parses the
// session input, inspects the repository, consults the PR cache and writes
// the rendered lines.
package statusline

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mrbonezy/cc-statusline/internal/config"
	"github.com/mrbonezy/cc-statusline/internal/gitstate"
	"github.com/mrbonezy/cc-statusline/internal/logging"
	"github.com/mrbonezy/cc-statusline/internal/pathfmt"
	"github.com/mrbonezy/cc-statusline/internal/prstatus"
	"github.com/mrbonezy/cc-statusline/internal/render"
)

// Runner holds everything one render needs. Build it once with New.
type Runner struct {
	home      string
	rows      render.Rows
	locations gitstate.LocationCache
	stats     gitstate.StatsCache
	prs       *prstatus.Dispatcher
	log       *slog.Logger

	getenv   func(string) string
	hostname func() (string, error)
	getwd    func() (string, error)
}

func New(cfg config.Config) *Runner {
	r := &Runner{
		home: cfg.Home,
		rows: render.Rows{
			Theme: render.NewTheme(cfg.Theme, cfg.NoColor),
			Width: cfg.Width,
		},
		locations: gitstate.NewLocationCache(cfg.CacheDir, logging.ForComponent(logging.CompCache)),
		stats:     gitstate.NewStatsCache(cfg.CacheDir, logging.ForComponent(logging.CompGit)),
		log:       logging.ForComponent(logging.CompRender),
		getenv:    os.Getenv,
		hostname:  os.Hostname,
		getwd:     os.Getwd,
	}
	if cfg.PREnabled {
		r.prs = prstatus.NewDispatcher(prstatus.Options{
			Dir:      cfg.CacheDir,
			Cache:    prstatus.NewCache(cfg.CacheDir, cfg.PRTTL, cfg.NoPRTTL),
			Throttle: cfg.Throttle,
			GhPath:   cfg.GhPath,
			Client:   prstatus.NewClient(cfg.GitHubAPI, cfg.HTTPTimeout),
			Tokens:   prstatus.DefaultTokenChain(),
			Logger:   logging.ForComponent(logging.CompPR),
		})
	}
	return r
}

// Run renders the rows for the JSON document in input and writes them to w,
// one per line. Problems gathering data drop the affected row or field; only
// write errors are returned.
func (r *Runner) Run(ctx context.Context, input []byte, w io.Writer) error {
	in := render.ParseInput(input)
	dir := in.Dir()
	if dir == "" {
		if wd, err := r.getwd(); err == nil {
			dir = wd
		}
	}

	lines := []string{
		r.rows.Location(r.sshHostname(), in.ProjectName(), pathfmt.HomeRelative(dir, r.home)),
	}

	var repo *gitstate.Repo
	if in.Git.Branch == nil && dir != "" {
		found, err := r.locations.Locate(dir)
		if err != nil {
			r.log.Debug("no repository", "dir", dir, "error", err)
		} else {
			repo = found
		}
	}
	lines = append(lines, r.rows.Git(r.gitLine(in.Git, repo)))

	if pr, ok := r.pullRequest(ctx, in.PR, repo); ok {
		lines = append(lines, r.rows.PR(pr))
	}
	if row := r.rows.Session(in); row != "" {
		lines = append(lines, row)
	}
	if row := r.rows.Usage(in); row != "" {
		lines = append(lines, row)
	}

	out := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := out.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return out.Flush()
}

func (r *Runner) gitLine(override render.GitInput, repo *gitstate.Repo) *render.GitLine {
	if override.Branch != nil {
		line := &render.GitLine{
			Branch: *override.Branch,
			Files:  override.ChangedFiles,
			Ahead:  override.Ahead,
			Behind: override.Behind,
		}
		if override.Worktree != nil {
			line.Worktree = *override.Worktree
		}
		return line
	}
	if repo == nil {
		return nil
	}
	stats := r.stats.Status(repo)
	return &render.GitLine{
		Branch:   repo.Branch,
		Worktree: repo.Worktree(),
		Files:    stats.FilesChanged,
		Ahead:    stats.Ahead,
		Behind:   stats.Behind,
	}
}

func (r *Runner) pullRequest(ctx context.Context, override render.PRInput, repo *gitstate.Repo) (prstatus.Info, bool) {
	if override.Number != nil {
		return prstatus.Info{
			Number:       *override.Number,
			State:        override.State,
			URL:          override.URL,
			Comments:     override.Comments,
			ChangedFiles: override.ChangedFiles,
			CheckStatus:  override.CheckStatus,
		}, true
	}
	if repo == nil || r.prs == nil {
		return prstatus.Info{}, false
	}
	return r.prs.Get(ctx, prstatus.Target{
		GitDir:    repo.GitDir,
		WorkDir:   repo.WorkDir,
		Branch:    repo.Branch,
		OriginURL: repo.OriginURL(),
	})
}

// sshHostname is the short host name during an SSH session, "" otherwise.
func (r *Runner) sshHostname() string {
	if r.getenv("SSH_CONNECTION") == "" && r.getenv("SSH_CLIENT") == "" {
		return ""
	}
	host, err := r.hostname()
	if err != nil {
		return ""
	}
	host, _, _ = strings.Cut(host, ".")
	return host
}
