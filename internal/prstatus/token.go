package prstatus

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

var ErrNoToken = errors.New("no github token available")

// TokenSource yields a GitHub token or "" when it has none.
type TokenSource interface {
	Token(ctx context.Context) string
}

// EnvToken reads a token from an environment variable.
type EnvToken struct {
	Name   string
	Lookup func(string) string
}

func (e EnvToken) Token(context.Context) string {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.Getenv
	}
	return strings.TrimSpace(lookup(e.Name))
}

// CredentialHelper asks git's configured credential helpers for the
// github.com password.
type CredentialHelper struct {
	Run func(ctx context.Context, input string) ([]byte, error)
}

func (c CredentialHelper) Token(ctx context.Context) string {
	run := c.Run
	if run == nil {
		run = runCredentialFill
	}
	out, err := run(ctx, "protocol=https\nhost=github.com\n\n")
	if err != nil {
		return ""
	}
	return parseCredentialPassword(out)
}

func runCredentialFill(ctx context.Context, input string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "credential", "fill")
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	return cmd.Output()
}

func parseCredentialPassword(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if value, ok := strings.CutPrefix(scanner.Text(), "password="); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// TokenChain tries each source in order; the first non-empty token wins.
type TokenChain []TokenSource

// DefaultTokenChain checks GITHUB_TOKEN, then GH_TOKEN, then git credentials.
func DefaultTokenChain() TokenChain {
	return TokenChain{
		EnvToken{Name: "GITHUB_TOKEN"},
		EnvToken{Name: "GH_TOKEN"},
		CredentialHelper{},
	}
}

func (c TokenChain) Token(ctx context.Context) (string, error) {
	for _, source := range c {
		if token := source.Token(ctx); token != "" {
			return token, nil
		}
	}
	return "", ErrNoToken
}
