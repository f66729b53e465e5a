package gitstate

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line counting is bounded so a render stays fast on large trees. Files past
// these limits still count as changed but contribute no line totals.
const (
	maxDiffFiles = 64
	maxDiffBytes = 512 << 10
)

type changedEntry struct {
	entry   *index.Entry
	missing bool
}

// scanWorkingTree compares every index entry's recorded mtime against the
// file on disk. A mismatch or a missing file counts as one changed file.
func (r *Repo) scanWorkingTree() (files, added, deleted uint32, err error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return 0, 0, 0, err
	}
	var changed []changedEntry
	for _, e := range idx.Entries {
		info, statErr := os.Lstat(filepath.Join(r.WorkDir, filepath.FromSlash(e.Name)))
		switch {
		case statErr != nil:
			changed = append(changed, changedEntry{entry: e, missing: true})
		case info.ModTime().Unix() != e.ModifiedAt.Unix():
			changed = append(changed, changedEntry{entry: e})
		}
	}
	added, deleted = r.lineStats(changed)
	return uint32(len(changed)), added, deleted, nil
}

// lineStats diffs the indexed blob of each changed file against the working
// copy, line by line.
func (r *Repo) lineStats(changed []changedEntry) (added, deleted uint32) {
	if len(changed) == 0 {
		return 0, 0
	}
	dmp := diffmatchpatch.New()
	for i, c := range changed {
		if i >= maxDiffFiles {
			break
		}
		before, ok := r.blobText(c.entry.Hash)
		if !ok {
			continue
		}
		after := ""
		if !c.missing {
			after, ok = readText(filepath.Join(r.WorkDir, filepath.FromSlash(c.entry.Name)))
			if !ok {
				continue
			}
		}
		a, d := countLineChanges(dmp, before, after)
		added += a
		deleted += d
	}
	return added, deleted
}

func countLineChanges(dmp *diffmatchpatch.DiffMatchPatch, before, after string) (added, deleted uint32) {
	if before == after {
		return 0, 0
	}
	src, dst, _ := dmp.DiffLinesToRunes(before, after)
	for _, d := range dmp.DiffMainRunes(src, dst, false) {
		n := uint32(utf8.RuneCountInString(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			deleted += n
		}
	}
	return added, deleted
}

func (r *Repo) blobText(h plumbing.Hash) (string, bool) {
	if h.IsZero() {
		return "", false
	}
	blob, err := r.repo.BlobObject(h)
	if err != nil || blob.Size > maxDiffBytes {
		return "", false
	}
	rd, err := blob.Reader()
	if err != nil {
		return "", false
	}
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil || isBinary(data) {
		return "", false
	}
	return string(data), true
}

func readText(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > maxDiffBytes {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil || isBinary(data) {
		return "", false
	}
	return string(data), true
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}
