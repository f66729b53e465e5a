// Package pathfmt shortens filesystem paths for display in a narrow row.
package pathfmt

import (
	"strings"
	"unicode/utf8"
)

// maxSegments bounds how many '/' boundaries Abbreviate tracks. Anything past
// the 32nd segment stays glued to the final segment.
const maxSegments = 32

// Abbreviate fits path into maxWidth bytes by collapsing leading segments to
// their first character. It first tries to keep the last two segments intact
// and then only the last one. The result can still be wider than maxWidth
// when the final segment alone is too long.
func Abbreviate(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}

	var starts [maxSegments]int
	count := 1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' && count < maxSegments {
			starts[count] = i + 1
			count++
		}
	}
	if count < 2 {
		return path
	}

	lastStart := starts[count-1]
	parentStart := starts[count-2]
	last := path[lastStart:]
	parent := path[parentStart : lastStart-1]

	keep := count - 1
	tail := last
	if (count-2)*2+len(parent)+1+len(last) <= maxWidth || count <= 2 {
		keep = count - 2
		tail = parent + "/" + last
	}

	var b strings.Builder
	b.Grow(maxWidth + 10)
	for _, start := range starts[:keep] {
		if start >= len(path) || path[start] == '/' {
			continue
		}
		r, _ := utf8.DecodeRuneInString(path[start:])
		b.WriteRune(r)
		b.WriteByte('/')
	}
	b.WriteString(tail)
	return b.String()
}

// HomeRelative replaces a leading home directory with "~".
func HomeRelative(dir, home string) string {
	home = strings.TrimRight(home, "/")
	if home == "" || !strings.HasPrefix(dir, home) {
		return dir
	}
	rest := dir[len(home):]
	if rest != "" && rest[0] != '/' {
		return dir
	}
	return "~" + rest
}
