package prstatus

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

// ShellEscape quotes s for a POSIX shell.
func ShellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

type refreshScript struct {
	WorkDir   string
	GhPath    string
	Branch    string
	CachePath string
	TempPath  string
	Timestamp int64
}

// render produces a self-deleting script that runs gh pr view in the work
// tree and moves the result onto the cache file.
func (s refreshScript) render() string {
	gh := ShellEscape(s.GhPath)
	ts := ShellEscape(fmt.Sprintf("%d", s.Timestamp))
	branch := ShellEscape(s.Branch)
	tmp := ShellEscape(s.TempPath)
	cache := ShellEscape(s.CachePath)

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("trap 'rm -f \"$0\"' EXIT\n")
	fmt.Fprintf(&b, "cd %s || exit 1\n", ShellEscape(s.WorkDir))
	fmt.Fprintf(&b, "json=$(%s pr view --json number,state,url,comments,changedFiles,statusCheckRollup 2>/dev/null)\n", gh)
	b.WriteString("if [ $? -eq 0 ] && [ -n \"$json\" ]; then\n")
	fmt.Fprintf(&b, "  printf '%%s\\n%%s\\n%%s' %s %s \"$json\" > %s && mv -f %s %s\n", ts, branch, tmp, tmp, cache)
	b.WriteString("else\n")
	fmt.Fprintf(&b, "  err=$(%s pr view 2>&1 1>/dev/null)\n", gh)
	b.WriteString("  case \"$err\" in\n")
	b.WriteString("    *\"no pull requests\"*|*\"no open pull requests\"*|*\"Could not resolve to a PullRequest\"*)\n")
	fmt.Fprintf(&b, "      printf '%%s\\n%%s\\n%%s' %s %s %s > %s && mv -f %s %s ;;\n", ts, branch, noPRMarker, tmp, tmp, cache)
	b.WriteString("    *)\n")
	fmt.Fprintf(&b, "      printf '%%s\\n%%s\\nERROR:%%s' %s %s \"$err\" > %s && mv -f %s %s ;;\n", ts, branch, tmp, tmp, cache)
	b.WriteString("  esac\n")
	b.WriteString("fi\n")
	return b.String()
}

// writeScript stores the script in the cache directory with owner-only
// permissions and returns its path.
func writeScript(dir cachedir.Dir, script refreshScript) (string, error) {
	path, err := dir.Script()
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o700)
	if err != nil {
		return "", fmt.Errorf("create refresh script: %w", err)
	}
	if _, err := f.WriteString(script.render()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write refresh script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close refresh script: %w", err)
	}
	return path, nil
}
