package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mrbonezy/cc-statusline/internal/cachedir"
)

var errCacheUnavailable = errors.New("no usable cache directory")

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached git and PR state",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), dir.Path())
				return err
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List cache files with size and age",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				return listCache(cmd.OutOrStdout(), dir, time.Now())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove cache files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				removed, err := clearCache(dir)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d files from %s\n", removed, dir.Path())
				return err
			},
		},
	)
	return cmd
}

func cacheDir() (cachedir.Dir, error) {
	cfg, _ := loadConfig()
	if !cfg.CacheDir.Enabled() {
		return "", errCacheUnavailable
	}
	return cfg.CacheDir, nil
}

type cacheEntry struct {
	name    string
	size    int64
	modTime time.Time
}

// cacheEntries returns the files this program owns in dir, sorted by name.
func cacheEntries(dir cachedir.Dir) ([]cacheEntry, error) {
	items, err := os.ReadDir(dir.Path())
	if err != nil {
		return nil, err
	}
	var entries []cacheEntry
	for _, item := range items {
		if item.IsDir() || !cachedir.Owns(item.Name()) {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries = append(entries, cacheEntry{name: item.Name(), size: info.Size(), modTime: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

func listCache(w io.Writer, dir cachedir.Dir, now time.Time) error {
	entries, err := cacheEntries(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "cache is empty")
		return err
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.AppendHeader(table.Row{"File", "Size", "Modified"})
	var total uint64
	for _, e := range entries {
		total += uint64(e.size)
		tw.AppendRow(table.Row{e.name, humanize.Bytes(uint64(e.size)), humanize.RelTime(e.modTime, now, "ago", "from now")})
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("%d files", len(entries)), humanize.Bytes(total), ""})
	tw.Render()
	return nil
}

func clearCache(dir cachedir.Dir) (int, error) {
	entries, err := cacheEntries(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		if err := os.Remove(filepath.Join(dir.Path(), e.name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
