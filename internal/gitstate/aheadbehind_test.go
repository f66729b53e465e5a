package gitstate

import (
	"testing"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discover(t *testing.T, tr *testRepo) *Repo {
	t.Helper()
	repo, err := Discover(tr.dir)
	require.NoError(t, err)
	return repo
}

func TestAheadBehind_NoUpstream(t *testing.T) {
	tr := newTestRepo(t)
	tr.commit("a.txt", "one\n")

	ahead, behind := discover(t, tr).AheadBehind()
	assert.Zero(t, ahead)
	assert.Zero(t, behind)
}

func TestAheadBehind_IdenticalRefs(t *testing.T) {
	tr := newTestRepo(t)
	head := tr.commit("a.txt", "one\n")
	tr.setRef(plumbing.NewRemoteReferenceName("origin", "main"), head)

	ahead, behind := discover(t, tr).AheadBehind()
	assert.Zero(t, ahead)
	assert.Zero(t, behind)
}

func TestAheadBehind_Diverged(t *testing.T) {
	tr := newTestRepo(t)
	base := tr.commit("a.txt", "one\n")
	tr.commit("b.txt", "two\n")
	local := tr.commit("c.txt", "three\n")
	// Committing moves main, so put it back after building the remote commit.
	remote := tr.commit("r.txt", "remote\n", base)
	tr.setRef(plumbing.NewBranchReferenceName("main"), local)
	tr.setRef(plumbing.NewRemoteReferenceName("origin", "main"), remote)

	ahead, behind := discover(t, tr).AheadBehind()
	assert.Equal(t, uint32(2), ahead)
	assert.Equal(t, uint32(1), behind)
}

func TestAheadBehind_ConfiguredUpstream(t *testing.T) {
	tr := newTestRepo(t)
	base := tr.commit("a.txt", "one\n")
	tr.commit("b.txt", "two\n")
	tr.setRef(plumbing.NewRemoteReferenceName("upstream", "trunk"), base)
	// origin/main would report nothing; the configured upstream must win.
	tr.setRef(plumbing.NewRemoteReferenceName("origin", "main"), mustHead(t, tr))
	require.NoError(t, tr.repo.CreateBranch(&config.Branch{
		Name:   "main",
		Remote: "upstream",
		Merge:  plumbing.NewBranchReferenceName("trunk"),
	}))

	ahead, behind := discover(t, tr).AheadBehind()
	assert.Equal(t, uint32(1), ahead)
	assert.Zero(t, behind)
}

func TestAheadBehind_MergeCommits(t *testing.T) {
	tr := newTestRepo(t)
	base := tr.commit("a.txt", "one\n")
	side := tr.commit("side.txt", "side\n", base)
	tr.setRef(plumbing.NewBranchReferenceName("main"), base)
	local := tr.commit("b.txt", "two\n", base)
	merge := tr.commit("m.txt", "merge\n", local, side)
	tr.setRef(plumbing.NewBranchReferenceName("main"), merge)
	tr.setRef(plumbing.NewRemoteReferenceName("origin", "main"), side)

	ahead, behind := discover(t, tr).AheadBehind()
	assert.Equal(t, uint32(2), ahead, "merge and local commit")
	assert.Zero(t, behind, "side is reachable through the merge")
}

func TestCountAheadBehind_UnknownCommit(t *testing.T) {
	tr := newTestRepo(t)
	head := tr.commit("a.txt", "one\n")
	missing := plumbing.NewHash("0123456789012345678901234567890123456789")

	ahead, behind := CountAheadBehind(tr.repo, head, missing)
	assert.Zero(t, ahead)
	assert.Zero(t, behind)
}

func mustHead(t *testing.T, tr *testRepo) plumbing.Hash {
	t.Helper()
	ref, err := tr.repo.Head()
	require.NoError(t, err)
	return ref.Hash()
}
