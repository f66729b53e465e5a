package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	in := ParseInput([]byte(`{
		"hook_event_name": "Status",
		"cwd": "/tmp/cwd-wins",
		"model": {"id": "claude-x", "display_name": "Opus"},
		"workspace": {"current_dir": "/tmp/ws", "project_dir": "/tmp/myproject/"},
		"context_window": {"remaining_percentage": 75.5, "total_input_tokens": 10, "current_usage": {"a": 1}},
		"git": {"branch": "feat", "ahead": 2},
		"pr": {"number": 9, "state": "OPEN"}
	}`))

	assert.Equal(t, "/tmp/cwd-wins", in.Dir())
	assert.Equal(t, "myproject", in.ProjectName())
	require.NotNil(t, in.Model.DisplayName)
	assert.Equal(t, "Opus", *in.Model.DisplayName)
	require.NotNil(t, in.ContextWindow.RemainingPercentage)
	assert.InDelta(t, 75.5, *in.ContextWindow.RemainingPercentage, 0.001)
	require.NotNil(t, in.Git.Branch)
	assert.Equal(t, "feat", *in.Git.Branch)
	assert.Equal(t, uint32(2), in.Git.Ahead)
	require.NotNil(t, in.PR.Number)
	assert.Equal(t, uint32(9), *in.PR.Number)
}

func TestParseInput_InvalidOrEmpty(t *testing.T) {
	for _, raw := range []string{"", "   \n", "not json", `{"cwd": 5}`} {
		assert.Equal(t, Input{}, ParseInput([]byte(raw)), raw)
	}
}

func TestInputDir_Priority(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{name: "none", want: ""},
		{name: "project only", in: Input{Workspace: Workspace{ProjectDir: "/p"}}, want: "/p"},
		{name: "current over project", in: Input{Workspace: Workspace{ProjectDir: "/p", CurrentDir: "/c"}}, want: "/c"},
		{name: "cwd over all", in: Input{Cwd: "/x", Workspace: Workspace{ProjectDir: "/p", CurrentDir: "/c"}}, want: "/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Dir())
		})
	}
}
