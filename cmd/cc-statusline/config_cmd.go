package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mrbonezy/cc-statusline/internal/config"
)

const (
	configThemeKey = "config_theme"
	configWidthKey = "config_width"
	configPRKey    = "config_pr"
	configDebugKey = "config_debug"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Open interactive configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := loadConfig()
			if cfg.ConfigPath == "" {
				return errors.New("cannot locate config file: HOME not set")
			}
			file, err := config.ReadFile(cfg.ConfigPath)
			if err != nil {
				return err
			}
			values := newConfigValues(file)
			final, err := tea.NewProgram(newConfigModel(&values)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(configModel); !ok || !m.completed() {
				return nil
			}
			updated, err := values.apply(file)
			if err != nil {
				return err
			}
			if err := config.Save(cfg.ConfigPath, updated); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "saved", cfg.ConfigPath)
			return err
		},
	}
}

// configValues are the form fields, bound by pointer.
type configValues struct {
	Theme string
	Width string
	PR    bool
	Debug bool
}

func newConfigValues(f config.File) configValues {
	v := configValues{
		Theme: config.ThemeBright,
		Width: strconv.Itoa(config.DefaultWidth),
		PR:    true,
		Debug: f.Debug,
	}
	if f.Theme == config.ThemeDim {
		v.Theme = config.ThemeDim
	}
	if f.Width > 0 {
		v.Width = strconv.Itoa(f.Width)
	}
	if f.PR != nil {
		v.PR = *f.PR
	}
	return v
}

// apply copies the form values onto f, leaving fields the form does not
// edit untouched.
func (v configValues) apply(f config.File) (config.File, error) {
	width, err := parseWidth(v.Width)
	if err != nil {
		return f, err
	}
	pr := v.PR
	f.Theme = v.Theme
	f.Width = width
	f.PR = &pr
	f.Debug = v.Debug
	return f, nil
}

func parseWidth(value string) (int, error) {
	width, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || width < 20 || width > 500 {
		return 0, errors.New("width must be a number between 20 and 500")
	}
	return width, nil
}

func configHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#7aa2f7"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func newConfigForm(v *configValues) *huh.Form {
	theme := huh.NewSelect[string]().
		Key(configThemeKey).
		Title("Theme").
		Options(
			huh.NewOption("Bright", config.ThemeBright),
			huh.NewOption("Dim", config.ThemeDim),
		).
		Value(&v.Theme)

	width := huh.NewInput().
		Key(configWidthKey).
		Title("Row width").
		Inline(true).
		Value(&v.Width).
		Validate(func(value string) error {
			_, err := parseWidth(value)
			return err
		})

	pr := huh.NewConfirm().
		Key(configPRKey).
		Title("Show pull request row?").
		Affirmative("Yes").
		Negative("No").
		Inline(true).
		Value(&v.PR)

	debug := huh.NewConfirm().
		Key(configDebugKey).
		Title("Write debug log?").
		Affirmative("Yes").
		Negative("No").
		Inline(true).
		Value(&v.Debug)

	return huh.NewForm(huh.NewGroup(theme, width, pr, debug)).
		WithTheme(configHuhTheme()).
		WithShowHelp(false)
}

type configModel struct {
	form      *huh.Form
	values    *configValues
	cancel    key.Binding
	cancelled bool
}

func newConfigModel(v *configValues) configModel {
	return configModel{
		form:   newConfigForm(v),
		values: v,
		cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
	}
}

func (m configModel) completed() bool {
	return !m.cancelled && m.form.State == huh.StateCompleted
}

func (m configModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m configModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.cancel) {
		m.cancelled = true
		return m, tea.Quit
	}
	model, cmd := m.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		m.form = form
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, tea.Quit
	case huh.StateAborted:
		m.cancelled = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m configModel) View() string {
	if m.cancelled || m.form.State != huh.StateNormal {
		return ""
	}
	return m.form.View() + "\n" + m.cancel.Help().Key + " " + m.cancel.Help().Desc + "\n"
}
