package prstatus

import (
	"errors"
	"strings"
)

var ErrNotGitHub = errors.New("origin is not a github.com remote")

// ParseGitHubURL extracts owner and repo from a github.com remote URL in the
// git@github.com:owner/repo or http(s)://github.com/owner/repo form. The host
// must be exactly github.com so lookalikes such as notgithub.com or
// github.com.evil.com are rejected.
func ParseGitHubURL(url string) (owner, repo string, err error) {
	const sshPrefix = "git@github.com:"
	if rest, ok := strings.CutPrefix(url, sshPrefix); ok {
		if owner, repo, ok := splitOwnerRepo(rest); ok {
			return owner, repo, nil
		}
	}

	lower := strings.ToLower(url)
	for _, prefix := range []string{"https://github.com/", "http://github.com/"} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		if owner, repo, ok := splitOwnerRepo(url[len(prefix):]); ok {
			return owner, repo, nil
		}
	}
	return "", "", ErrNotGitHub
}

func splitOwnerRepo(path string) (string, string, bool) {
	for strings.HasSuffix(path, ".git") {
		path = strings.TrimSuffix(path, ".git")
	}
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}

// PercentEncode escapes every byte outside the RFC 3986 unreserved set.
func PercentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}
