package gitstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_FromSubdirectory(t *testing.T) {
	tr := newTestRepo(t)
	head := tr.commit("a.txt", "one\n")
	sub := filepath.Join(tr.dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, err := Discover(sub)
	require.NoError(t, err)
	assert.Equal(t, tr.dir, repo.WorkDir)
	assert.Equal(t, filepath.Join(tr.dir, ".git"), repo.GitDir)
	assert.Equal(t, "main", repo.Branch)
	assert.Equal(t, head.String(), repo.HeadOID())
	assert.Empty(t, repo.Worktree())
}

func TestDiscover_OutsideRepository(t *testing.T) {
	_, err := Discover(t.TempDir())
	assert.ErrorIs(t, err, ErrNotInGitRepository)
}

func TestDiscover_UnbornBranch(t *testing.T) {
	tr := newTestRepo(t)
	repo, err := Discover(tr.dir)
	require.NoError(t, err)
	assert.Equal(t, "main", repo.Branch)
	assert.Empty(t, repo.HeadOID())
}

func TestDiscover_DetachedHead(t *testing.T) {
	tr := newTestRepo(t)
	first := tr.commit("a.txt", "one\n")
	tr.commit("b.txt", "two\n")
	tr.setRef("HEAD", first)

	repo, err := Discover(tr.dir)
	require.NoError(t, err)
	assert.Equal(t, "HEAD", repo.Branch)
	assert.Equal(t, first.String(), repo.HeadOID())
}

func TestOpen_UsesGivenBranch(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "one\n")

	repo, err := Open(filepath.Join(tr.dir, ".git"), "cached-branch")
	require.NoError(t, err)
	assert.Equal(t, tr.dir, repo.WorkDir)
	assert.Equal(t, "cached-branch", repo.Branch)
}

func TestOriginURL(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "one\n")
	_, err := tr.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/widgets.git"},
	})
	require.NoError(t, err)

	repo, err := Discover(tr.dir)
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:acme/widgets.git", repo.OriginURL())
}

func TestWorktreeName(t *testing.T) {
	tests := []struct {
		gitDir string
		want   string
	}{
		{"/home/u/repo/.git/worktrees/feature-x", "feature-x"},
		{"/home/u/repo/.git/worktrees/feature-x/", "feature-x"},
		{"/home/u/repo/.git", ""},
		{"/home/u/repo/.git/worktrees/", ""},
	}
	for _, tc := range tests {
		if got := WorktreeName(tc.gitDir); got != tc.want {
			t.Fatalf("WorktreeName(%q): expected %q, got %q", tc.gitDir, tc.want, got)
		}
	}
}

func TestParseGitdirPointer(t *testing.T) {
	root := t.TempDir()
	dotGit := filepath.Join(root, ".git")
	require.NoError(t, os.WriteFile(dotGit, []byte("gitdir: ../main/.git/worktrees/wt1\n"), 0o644))

	got, err := parseGitdirPointer(dotGit, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(root), "main", ".git", "worktrees", "wt1"), got)

	require.NoError(t, os.WriteFile(dotGit, []byte("nonsense"), 0o644))
	_, err = parseGitdirPointer(dotGit, root)
	assert.Error(t, err)
}

func TestWorkDirForGitDir_LinkedWorktree(t *testing.T) {
	base := t.TempDir()
	gitDir := filepath.Join(base, "main", ".git", "worktrees", "wt1")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))
	wtDir := filepath.Join(base, "wt1")
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "gitdir"), []byte(filepath.Join(wtDir, ".git")+"\n"), 0o644))

	got, err := workDirForGitDir(gitDir)
	require.NoError(t, err)
	assert.Equal(t, wtDir, got)

	got, err = workDirForGitDir(filepath.Join(base, "main", ".git"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "main"), got)
}

func TestWorkDirForGitDir_SubmoduleCoreWorktree(t *testing.T) {
	base := t.TempDir()
	gitDir := filepath.Join(base, "super", ".git", "modules", "sub")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))

	_, err := workDirForGitDir(gitDir)
	assert.ErrorIs(t, err, ErrNotInGitRepository)

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "config"), []byte("[core]\n\tworktree = ../../../sub\n"), 0o644))
	got, err := workDirForGitDir(gitDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "super", "sub"), got)
}
