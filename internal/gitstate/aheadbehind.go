package gitstate

import (
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// walkLimit caps each ancestry walk. Counts past it are undercounted.
const walkLimit = 10000

// upstreamRef is branch.<name>.remote/merge mapped to a remote-tracking ref,
// or refs/remotes/origin/<branch> when the branch has no upstream configured.
func (r *Repo) upstreamRef() plumbing.ReferenceName {
	if cfg, err := r.repo.Config(); err == nil {
		if b, ok := cfg.Branches[r.Branch]; ok && b != nil && b.Remote != "" && b.Merge.IsBranch() {
			return plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short())
		}
	}
	return plumbing.NewRemoteReferenceName("origin", r.Branch)
}

// UpstreamOID resolves the upstream commit, "" when there is none. A detached
// HEAD has no upstream.
func (r *Repo) UpstreamOID() string {
	if r.Branch == "" || r.Branch == plumbing.HEAD.String() {
		return ""
	}
	ref, err := r.repo.Reference(r.upstreamRef(), true)
	if err != nil || ref.Hash().IsZero() {
		return ""
	}
	return ref.Hash().String()
}

// AheadBehind counts commits HEAD has that upstream lacks and the reverse.
// Missing HEAD or upstream yields (0, 0).
func (r *Repo) AheadBehind() (ahead, behind uint32) {
	return r.aheadBehind(r.HeadOID(), r.UpstreamOID())
}

func (r *Repo) aheadBehind(head, upstream string) (uint32, uint32) {
	if head == "" || upstream == "" {
		return 0, 0
	}
	return CountAheadBehind(r.repo, plumbing.NewHash(head), plumbing.NewHash(upstream))
}

// CountAheadBehind walks both ancestries, each bounded by walkLimit. The
// walks are exhaustive within the cap since merges can reach shared history
// from both sides.
func CountAheadBehind(repo *git.Repository, head, upstream plumbing.Hash) (ahead, behind uint32) {
	if head.IsZero() || upstream.IsZero() || head == upstream {
		return 0, 0
	}
	return countNotIn(repo, head, upstream), countNotIn(repo, upstream, head)
}

// countNotIn counts commits reachable from from that are not reachable from
// exclude.
func countNotIn(repo *git.Repository, from, exclude plumbing.Hash) uint32 {
	excluded := make(map[plumbing.Hash]struct{})
	ok := walkAncestry(repo, exclude, func(h plumbing.Hash) bool {
		excluded[h] = struct{}{}
		return len(excluded) < walkLimit
	})
	if !ok {
		return 0
	}

	var count uint32
	visited := 0
	ok = walkAncestry(repo, from, func(h plumbing.Hash) bool {
		visited++
		if _, seen := excluded[h]; !seen {
			count++
		}
		return visited < walkLimit
	})
	if !ok {
		return 0
	}
	return count
}

// walkAncestry visits every commit reachable from start until visit returns
// false. It reports false only when the walk could not start; a broken
// ancestry (shallow clone) ends the walk early with what was seen.
func walkAncestry(repo *git.Repository, start plumbing.Hash, visit func(plumbing.Hash) bool) bool {
	iter, err := repo.Log(&git.LogOptions{From: start})
	if err != nil {
		return false
	}
	defer iter.Close()
	_ = iter.ForEach(func(c *object.Commit) error {
		if !visit(c.Hash) {
			return storer.ErrStop
		}
		return nil
	})
	return true
}
