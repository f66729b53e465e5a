// Package render turns session input and repository state into the colored
// status rows.
package render

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Input is the JSON document the host writes to stdin. Unknown fields are
// ignored and every field is optional.
type Input struct {
	Cwd           string        `json:"cwd"`
	Model         ModelInfo     `json:"model"`
	ContextWindow ContextWindow `json:"context_window"`
	Cost          Cost          `json:"cost"`
	OutputStyle   OutputStyle   `json:"output_style"`
	Workspace     Workspace     `json:"workspace"`
	Git           GitInput      `json:"git"`
	PR            PRInput       `json:"pr"`
}

type ModelInfo struct {
	DisplayName *string `json:"display_name"`
}

type ContextWindow struct {
	RemainingPercentage *float64 `json:"remaining_percentage"`
	TotalInputTokens    uint64   `json:"total_input_tokens"`
	TotalOutputTokens   uint64   `json:"total_output_tokens"`
}

type Cost struct {
	TotalDurationMS uint64 `json:"total_duration_ms"`
}

type OutputStyle struct {
	Name *string `json:"name"`
}

type Workspace struct {
	ProjectDir string `json:"project_dir"`
	CurrentDir string `json:"current_dir"`
}

// GitInput overrides repository detection when Branch is set.
type GitInput struct {
	Branch       *string `json:"branch"`
	Worktree     *string `json:"worktree"`
	ChangedFiles uint32  `json:"changed_files"`
	Ahead        uint32  `json:"ahead"`
	Behind       uint32  `json:"behind"`
}

// PRInput overrides the PR cache when Number is set.
type PRInput struct {
	Number       *uint32 `json:"number"`
	State        string  `json:"state"`
	URL          string  `json:"url"`
	Comments     uint32  `json:"comments"`
	ChangedFiles uint32  `json:"changed_files"`
	CheckStatus  string  `json:"check_status"`
}

// ParseInput decodes data. Empty or invalid input yields the zero Input.
func ParseInput(data []byte) Input {
	var in Input
	if len(strings.TrimSpace(string(data))) == 0 {
		return in
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}
	}
	return in
}

// Dir picks the directory to describe: cwd, then workspace.current_dir,
// then workspace.project_dir. It returns "" when none is set.
func (in Input) Dir() string {
	for _, dir := range []string{in.Cwd, in.Workspace.CurrentDir, in.Workspace.ProjectDir} {
		if dir != "" {
			return dir
		}
	}
	return ""
}

// ProjectName is the last element of workspace.project_dir.
func (in Input) ProjectName() string {
	dir := strings.TrimRight(in.Workspace.ProjectDir, "/")
	if dir == "" {
		return ""
	}
	return filepath.Base(dir)
}
