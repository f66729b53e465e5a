// Package gitstate probes a local repository for the branch row: location,
// working tree change counts and divergence from upstream. Every probe is
// backed by a small file in the cache directory so a render usually costs a
// couple of stat calls.
package gitstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

var ErrNotInGitRepository = errors.New("not in a git repository")

// Repo is an opened repository plus the paths the caches are keyed by.
type Repo struct {
	repo *git.Repository

	// GitDir is the per-worktree metadata directory holding HEAD and index.
	GitDir string
	// WorkDir is the checked out tree.
	WorkDir string
	// Branch is the short name HEAD points at, or "HEAD" when detached.
	Branch string
}

// Discover walks up from dir to the nearest repository and opens it.
func Discover(dir string) (*Repo, error) {
	workDir, err := repoRootForDir(dir)
	if err != nil {
		return nil, err
	}
	gitDir, err := gitDirForRepoRoot(workDir)
	if err != nil {
		return nil, err
	}
	return openAt(gitDir, workDir, "")
}

// Open opens the repository owning gitDir. A non-empty branch is trusted
// instead of reading HEAD again.
func Open(gitDir, branch string) (*Repo, error) {
	workDir, err := workDirForGitDir(gitDir)
	if err != nil {
		return nil, err
	}
	return openAt(gitDir, workDir, branch)
}

func openAt(gitDir, workDir, branch string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(workDir, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", workDir, err)
	}
	if branch == "" {
		branch = headBranch(repo)
	}
	if branch == "" {
		return nil, ErrNotInGitRepository
	}
	return &Repo{repo: repo, GitDir: gitDir, WorkDir: workDir, Branch: branch}, nil
}

func headBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return ""
	}
	if ref.Type() == plumbing.SymbolicReference {
		return ref.Target().Short()
	}
	return "HEAD"
}

// HeadOID is the hex commit id HEAD resolves to, or "" on an unborn branch.
func (r *Repo) HeadOID() string {
	h, ok := r.headHash()
	if !ok {
		return ""
	}
	return h.String()
}

func (r *Repo) headHash() (plumbing.Hash, bool) {
	ref, err := r.repo.Reference(plumbing.HEAD, true)
	if err != nil || ref.Hash().IsZero() {
		return plumbing.ZeroHash, false
	}
	return ref.Hash(), true
}

// IndexMtime is the index file modification time in unix seconds, 0 if absent.
func (r *Repo) IndexMtime() uint64 {
	return mtimeSeconds(filepath.Join(r.GitDir, "index"))
}

// HeadMtime is the HEAD file modification time in unix seconds, 0 if absent.
func HeadMtime(gitDir string) uint64 {
	return mtimeSeconds(filepath.Join(gitDir, "HEAD"))
}

func mtimeSeconds(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	sec := info.ModTime().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

// OriginURL is the first configured URL of the origin remote.
func (r *Repo) OriginURL() string {
	cfg, err := r.repo.Config()
	if err != nil {
		return ""
	}
	remote, ok := cfg.Remotes["origin"]
	if !ok || remote == nil || len(remote.URLs) == 0 {
		return ""
	}
	return strings.TrimSpace(remote.URLs[0])
}

// Worktree is the linked worktree name for this repository, if any.
func (r *Repo) Worktree() string {
	return WorktreeName(r.GitDir)
}

// WorktreeName extracts <name> from a linked worktree metadata directory of
// the form /path/.git/worktrees/<name>.
func WorktreeName(gitDir string) string {
	const marker = "/.git/worktrees/"
	s := filepath.ToSlash(gitDir)
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimRight(s[idx+len(marker):], "/")
}

func repoRootForDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", ErrNotInGitRepository
		}
		dir = wd
	}
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", ErrNotInGitRepository
	}
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", ErrNotInGitRepository
}

func gitDirForRepoRoot(repoRoot string) (string, error) {
	dotGit := filepath.Join(repoRoot, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotInGitRepository
		}
		return "", err
	}
	if info.IsDir() {
		return filepath.Abs(dotGit)
	}
	return parseGitdirPointer(dotGit, repoRoot)
}

func parseGitdirPointer(dotGitFile string, repoRoot string) (string, error) {
	data, err := os.ReadFile(dotGitFile)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(data))
	const prefix = "gitdir:"
	if !strings.HasPrefix(strings.ToLower(line), prefix) {
		return "", fmt.Errorf("invalid .git file format in %s", repoRoot)
	}
	target := strings.TrimSpace(line[len(prefix):])
	if target == "" {
		return "", fmt.Errorf("empty gitdir in %s", repoRoot)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(repoRoot, target)
	}
	return filepath.Clean(target), nil
}

// workDirForGitDir maps a metadata directory back to its checkout. Linked
// worktrees record the path of their .git file in <gitdir>/gitdir; submodule
// git dirs under .git/modules name their checkout in core.worktree.
func workDirForGitDir(gitDir string) (string, error) {
	if filepath.Base(gitDir) == ".git" {
		return filepath.Dir(gitDir), nil
	}
	data, err := os.ReadFile(filepath.Join(gitDir, "gitdir"))
	if err != nil {
		return coreWorktree(gitDir)
	}
	dotGit := strings.TrimSpace(string(data))
	if dotGit == "" {
		return "", ErrNotInGitRepository
	}
	if !filepath.IsAbs(dotGit) {
		dotGit = filepath.Join(gitDir, dotGit)
	}
	return filepath.Dir(filepath.Clean(dotGit)), nil
}

func coreWorktree(gitDir string) (string, error) {
	f, err := os.Open(filepath.Join(gitDir, "config"))
	if err != nil {
		return "", ErrNotInGitRepository
	}
	defer f.Close()
	cfg, err := gitconfig.ReadConfig(f)
	if err != nil {
		return "", ErrNotInGitRepository
	}
	workDir := strings.TrimSpace(cfg.Core.Worktree)
	if workDir == "" {
		return "", ErrNotInGitRepository
	}
	if !filepath.IsAbs(workDir) {
		workDir = filepath.Join(gitDir, workDir)
	}
	return filepath.Clean(workDir), nil
}
