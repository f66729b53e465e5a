package gitstate

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt, when: time.Unix(1700000000, 0)}
}

func (r *testRepo) write(name, content string) string {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// commit writes name and commits it, returning the new commit hash.
func (r *testRepo) commit(name, content string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	r.write(name, content)
	_, err := r.wt.Add(name)
	require.NoError(r.t, err)
	r.when = r.when.Add(time.Minute)
	h, err := r.wt.Commit("commit "+name, &git.CommitOptions{
		Author:  &object.Signature{Name: "Test", Email: "test@example.com", When: r.when},
		Parents: parents,
	})
	require.NoError(r.t, err)
	return h
}

func (r *testRepo) setRef(name plumbing.ReferenceName, h plumbing.Hash) {
	r.t.Helper()
	require.NoError(r.t, r.repo.Storer.SetReference(plumbing.NewHashReference(name, h)))
}

// touch moves a file's mtime well away from what the index recorded.
func touch(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
}
