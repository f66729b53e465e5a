package gitstate

import (
	"log/slog"
	"os"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

// Stats feeds the branch row.
type Stats struct {
	FilesChanged uint32
	LinesAdded   uint32
	LinesDeleted uint32
	Ahead        uint32
	Behind       uint32
}

func (r StatsRecord) Stats() Stats {
	return Stats{
		FilesChanged: r.FilesChanged,
		LinesAdded:   r.LinesAdded,
		LinesDeleted: r.LinesDeleted,
		Ahead:        r.Ahead,
		Behind:       r.Behind,
	}
}

// StatsCache stores one StatsRecord per git metadata directory.
type StatsCache struct {
	dir cachedir.Dir
	log *slog.Logger
}

func NewStatsCache(dir cachedir.Dir, log *slog.Logger) StatsCache {
	return StatsCache{dir: dir, log: log}
}

// Load reads the record for gitDir. Missing or malformed files are a miss.
func (c StatsCache) Load(gitDir string) (StatsRecord, bool) {
	path, err := c.dir.Status(gitDir)
	if err != nil {
		return StatsRecord{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return StatsRecord{}, false
	}
	return DecodeStatsRecord(data)
}

// Save atomically replaces the record for gitDir.
func (c StatsCache) Save(gitDir string, rec StatsRecord) error {
	path, err := c.dir.Status(gitDir)
	if err != nil {
		return err
	}
	buf := rec.Encode()
	return cachedir.WriteAtomic(path, buf[:])
}

// Status returns the working tree stats for r. A cached record is reused
// while the index mtime and HEAD oid are unchanged; when only the upstream
// moved, just the ahead/behind counts are recomputed.
func (c StatsCache) Status(r *Repo) Stats {
	indexMtime := r.IndexMtime()
	head := r.HeadOID()
	upstream := r.UpstreamOID()

	rec, ok := c.Load(r.GitDir)
	if ok && rec.IndexMtime == indexMtime && rec.HeadMatches(head) {
		if rec.UpstreamMatches(upstream) {
			return rec.Stats()
		}
		rec.Ahead, rec.Behind = r.aheadBehind(head, upstream)
		SetOID(&rec.UpstreamOID, upstream)
		c.save(r.GitDir, rec)
		return rec.Stats()
	}

	files, added, deleted, err := r.scanWorkingTree()
	if err != nil {
		c.log.Debug("scan working tree", "git_dir", r.GitDir, "error", err)
	}
	rec = StatsRecord{
		IndexMtime:   indexMtime,
		FilesChanged: files,
		LinesAdded:   added,
		LinesDeleted: deleted,
	}
	SetOID(&rec.HeadOID, head)
	rec.Ahead, rec.Behind = r.aheadBehind(head, upstream)
	SetOID(&rec.UpstreamOID, upstream)
	c.save(r.GitDir, rec)
	return rec.Stats()
}

func (c StatsCache) save(gitDir string, rec StatsRecord) {
	if err := c.Save(gitDir, rec); err != nil {
		c.log.Debug("save status record", "git_dir", gitDir, "error", err)
	}
}
