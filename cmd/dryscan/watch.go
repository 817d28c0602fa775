package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/dryscan/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the analysis whenever a source file changes",
		ArgsUsage: "[path]",
		Flags: append(analysisFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period after the last change before re-analyzing",
			},
		),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	if c.String("ref") != "" {
		return fmt.Errorf("--ref cannot be watched")
	}
	paths := getPaths(c)
	if len(paths) > 1 {
		return fmt.Errorf("watch takes a single path, got %d", len(paths))
	}

	absPath, err := filepath.Abs(paths[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if info, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("invalid path %s: %w", paths[0], err)
	} else if !info.IsDir() {
		return fmt.Errorf("watch needs a directory, %s is a file", paths[0])
	}

	watcher, err := watch.NewWatcher(absPath, getConfig(c), c.Duration("debounce"),
		watch.WithOutput(c.App.Writer),
		watch.WithLogger(getLogger(c)),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	rerun := func() {
		if err := analyzePaths(c, paths, true, true); err != nil && !errors.Is(err, errFindings) {
			color.New(color.FgRed).Fprintf(c.App.ErrWriter, "Error: %v\n", err)
		}
	}
	watcher.SetCallback(func(changed []string) {
		for _, path := range changed {
			fmt.Fprintf(c.App.Writer, "changed: %s\n", path)
		}
		rerun()
	})

	rerun()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "\nStopping watch...")
	return nil
}
