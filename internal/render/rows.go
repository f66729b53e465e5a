package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mrbonezy/cc-statusline/internal/pathfmt"
	"github.com/mrbonezy/cc-statusline/internal/prstatus"
)

const minPathWidth = 10

// Rows renders individual status rows with a theme and a terminal width.
type Rows struct {
	Theme *Theme
	Width int
}

// Location is row one: [hostname •] project • cwd. displayDir should already
// be home-relative.
func (r Rows) Location(hostname, project, displayDir string) string {
	p := r.Theme.palette
	budget := r.Width - runewidth.StringWidth(project) - 3
	if budget < minPathWidth {
		budget = minPathWidth
	}

	var parts []string
	if hostname != "" {
		parts = append(parts, r.Theme.paint(p.Gray, hostname))
	}
	if project != "" {
		parts = append(parts, r.Theme.paint(p.Blue, project))
	}
	parts = append(parts, r.Theme.paint(p.Cyan, pathfmt.Abbreviate(displayDir, budget)))
	return strings.Join(parts, r.Theme.sep())
}

// GitLine is the repository summary on row two.
type GitLine struct {
	Branch   string
	Worktree string
	Files    uint32
	Ahead    uint32
	Behind   uint32
}

// Git is row two. A nil line renders "no git".
func (r Rows) Git(g *GitLine) string {
	p := r.Theme.palette
	if g == nil {
		return r.Theme.paint(p.Gray, "no git")
	}

	var b strings.Builder
	b.WriteString(r.Theme.paint(p.Purple, g.Branch))
	if g.Worktree != "" {
		b.WriteString(r.Theme.sep())
		b.WriteString(r.Theme.paint(p.Magenta, g.Worktree))
	}
	if g.Files > 0 {
		b.WriteString(r.Theme.sep())
		b.WriteString(r.Theme.paint(p.Gray, fmt.Sprintf("%d files", g.Files)))
	}
	if g.Ahead > 0 || g.Behind > 0 {
		b.WriteString(r.Theme.sep())
		if g.Ahead > 0 {
			b.WriteString(r.Theme.paint(p.Gray, fmt.Sprintf("↑%d", g.Ahead)))
		}
		if g.Behind > 0 {
			if g.Ahead > 0 {
				b.WriteString(" ")
			}
			b.WriteString(r.Theme.paint(p.Gray, fmt.Sprintf("↓%d", g.Behind)))
		}
	}
	return b.String()
}

// PR is the pull request row.
func (r Rows) PR(pr prstatus.Info) string {
	p := r.Theme.palette

	var b strings.Builder
	b.WriteString(r.Theme.link(pr.URL, r.Theme.paint(p.Cyan, fmt.Sprintf("#%d", pr.Number))))

	state := strings.ToLower(pr.State)
	b.WriteString(r.Theme.sep())
	b.WriteString(r.Theme.paint(stateColor(p, state), state))

	if pr.Comments > 0 {
		b.WriteString(r.Theme.sep())
		b.WriteString(r.Theme.paint(p.Gray, plural(pr.Comments, "comment")))
	}
	if pr.ChangedFiles > 0 {
		b.WriteString(r.Theme.sep())
		b.WriteString(r.Theme.paint(p.Gray, plural(pr.ChangedFiles, "file")))
	}

	checksURL := ""
	if pr.URL != "" {
		checksURL = pr.URL + "/checks"
	}
	switch status := strings.TrimSpace(pr.CheckStatus); status {
	case "passed", "failed", "pending":
		b.WriteString(r.Theme.sep())
		b.WriteString(r.Theme.link(checksURL, r.Theme.paint(checkStatusColor(p, status), "checks "+status)))
	}
	return b.String()
}

func stateColor(p Palette, state string) lipgloss.Color {
	switch state {
	case "open":
		return p.Green
	case "merged":
		return p.Purple
	case "closed":
		return p.Red
	default:
		return p.Gray
	}
}

func checkStatusColor(p Palette, status string) lipgloss.Color {
	switch status {
	case "passed":
		return p.Green
	case "failed":
		return p.Red
	default:
		return p.Orange
	}
}

func plural(n uint32, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Session is row three: model, remaining context and output style. It is
// empty when none of them applies.
func (r Rows) Session(in Input) string {
	p := r.Theme.palette
	var parts []string
	if name := in.Model.DisplayName; name != nil && *name != "Unknown" {
		parts = append(parts, r.Theme.paint(p.Orange, *name))
	}
	if pct := in.ContextWindow.RemainingPercentage; pct != nil {
		if remaining := truncatePercent(*pct); remaining < 100 {
			parts = append(parts, r.Theme.paint(p.Teal, fmt.Sprintf("%d%%", remaining)))
		}
	}
	if style := in.OutputStyle.Name; style != nil && *style != "default" {
		parts = append(parts, r.Theme.paint(p.Blue, *style))
	}
	return strings.Join(parts, r.Theme.sep())
}

// Usage is row four: elapsed time and token counts. It is empty when both
// are zero.
func (r Rows) Usage(in Input) string {
	p := r.Theme.palette
	var parts []string
	if ms := in.Cost.TotalDurationMS; ms > 0 {
		parts = append(parts, r.Theme.paint(p.Gray, FormatDuration(ms)))
	}
	input, output := in.ContextWindow.TotalInputTokens, in.ContextWindow.TotalOutputTokens
	if input > 0 || output > 0 {
		parts = append(parts, r.Theme.paint(p.Gray, FormatTokens(input)+"/"+FormatTokens(output)))
	}
	return strings.Join(parts, r.Theme.sep())
}

// truncatePercent drops the fraction, clamping negatives and NaN to zero.
func truncatePercent(v float64) uint32 {
	if !(v > 0) {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return uint32(v)
}

// FormatDuration renders milliseconds as "Hh Mm" or "Mm".
func FormatDuration(ms uint64) string {
	minutes := ms / 1000 / 60
	hours := minutes / 60
	minutes %= 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatTokens renders n as N, NK or N.NM, truncating rather than rounding.
func FormatTokens(n uint64) string {
	switch {
	case n >= 1_000_000:
		tenths := n / 100_000
		return fmt.Sprintf("%d.%dM", tenths/10, tenths%10)
	case n >= 1_000:
		return fmt.Sprintf("%dK", n/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
