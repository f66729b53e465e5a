package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mrbonezy/cc-statusline/internal/config"
	"github.com/mrbonezy/cc-statusline/internal/logging"
	"github.com/mrbonezy/cc-statusline/internal/statusline"
)

const maxInputBytes = 1 << 20

var loadConfig = config.Load

var cliLog = logging.ForComponent(logging.CompCLI)

func newRootCommand(args []string) *cobra.Command {
	var showVersion bool
	root := &cobra.Command{
		Use:           "cc-statusline",
		Short:         "Render a status line from session JSON on stdin",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), currentVersion())
				return err
			}
			return runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Print cc-statusline version and exit")

	root.AddCommand(
		newConfigCommand(),
		newCacheCommand(),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root
}

// runRender never fails on data problems; the host prompt would show the
// error text instead of a status line.
func runRender(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	initLogging(cfg)
	defer logging.Shutdown()
	if err != nil {
		cliLog.Debug("config file ignored", "path", cfg.ConfigPath, "error", err)
	}

	input, err := readInput(stdin)
	if err != nil {
		cliLog.Debug("read stdin", "error", err)
	}
	if err := statusline.New(cfg).Run(ctx, input, stdout); err != nil {
		cliLog.Debug("write status line", "error", err)
	}
	return nil
}

func initLogging(cfg config.Config) {
	dir := ""
	if cfg.CacheDir.Enabled() {
		dir = cfg.CacheDir.Path()
	}
	logging.Init(logging.Config{Dir: dir, Debug: cfg.Debug})
}

// readInput reads the session JSON, skipping an interactive terminal so a
// manual run does not block.
func readInput(stdin io.Reader) ([]byte, error) {
	if f, ok := stdin.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return nil, nil
		}
	}
	return io.ReadAll(io.LimitReader(stdin, maxInputBytes))
}
