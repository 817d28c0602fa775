package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/panbanda/dryscan/internal/progress"
	"github.com/panbanda/dryscan/internal/service/analysis"
	outputSvc "github.com/panbanda/dryscan/internal/service/output"
	scannerSvc "github.com/panbanda/dryscan/internal/service/scanner"
	"github.com/panbanda/dryscan/pkg/analyzer"
	"github.com/urfave/cli/v2"
)

func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "type-threshold",
			Usage: "Maximum member distance reported for similar types (default from config, 2)",
		},
		&cli.IntFlag{
			Name:  "dry-threshold",
			Usage: "Maximum body distance reported as a DRY violation (default from config, 0)",
		},
		&cli.StringFlag{
			Name:  "body-policy",
			Usage: "Method body comparison: compact or tokens",
		},
		&cli.StringFlag{
			Name:  "ref",
			Usage: "Analyze a git revision (branch, tag or commit) instead of the working tree",
		},
		&cli.BoolFlag{
			Name:  "fail-on-findings",
			Usage: "Exit with status 2 when anything is reported",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Report similar types and DRY violations",
		ArgsUsage: "[path...]",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			return runAnalysis(c, true, true)
		},
	}
}

func typesCmd() *cli.Command {
	return &cli.Command{
		Name:      "types",
		Usage:     "Report similar types only",
		ArgsUsage: "[path...]",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			return runAnalysis(c, true, false)
		},
	}
}

func methodsCmd() *cli.Command {
	return &cli.Command{
		Name:      "methods",
		Aliases:   []string{"dry"},
		Usage:     "Report DRY violations only",
		ArgsUsage: "[path...]",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			return runAnalysis(c, false, true)
		},
	}
}

// analysisOptions collects the threshold and policy flags that were given.
func analysisOptions(c *cli.Context, types, methods bool) analysis.Options {
	opts := analysis.Options{
		Types:      &types,
		Methods:    &methods,
		BodyPolicy: c.String("body-policy"),
	}
	if c.IsSet("type-threshold") {
		v := c.Int("type-threshold")
		opts.TypeThreshold = &v
	}
	if c.IsSet("dry-threshold") {
		v := c.Int("dry-threshold")
		opts.DRYThreshold = &v
	}
	return opts
}

func scan(c *cli.Context, paths []string) (*scannerSvc.ScanResult, error) {
	svc := scannerSvc.New(scannerSvc.WithConfig(getConfig(c)))
	ref := c.String("ref")
	if ref == "" {
		return svc.ScanPaths(paths)
	}
	if len(paths) > 1 {
		return nil, fmt.Errorf("--ref takes a single path, got %d", len(paths))
	}
	return svc.ScanRef(paths[0], ref)
}

func runAnalysis(c *cli.Context, types, methods bool) error {
	return analyzePaths(c, getPaths(c), types, methods)
}

func analyzePaths(c *cli.Context, paths []string, types, methods bool) error {
	cfg := getConfig(c)
	logger := getLogger(c)

	interactive := showProgress(c)
	var spinner *progress.Tracker
	if interactive {
		spinner = progress.NewSpinner("Scanning...")
	}
	scanResult, err := scan(c, paths)
	if err != nil {
		if spinner != nil {
			spinner.FinishError(err)
		}
		return err
	}
	if len(scanResult.Files) == 0 {
		if spinner != nil {
			spinner.FinishSkipped("no source files found")
			return nil
		}
		color.New(color.FgYellow).Fprintln(c.App.ErrWriter, "No source files found")
		return nil
	}
	if spinner != nil {
		spinner.FinishSuccess()
	}

	ctx := c.Context
	var tracker *progress.Tracker
	if interactive {
		tracker = progress.NewTracker("Analyzing...", len(scanResult.Files))
		ctx = analyzer.WithTracker(ctx, tracker.Analyzer())
	}

	svc := analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithSource(scanResult.Source),
		analysis.WithLogger(logger),
	)
	defer svc.Close()

	result, err := svc.AnalyzeFiles(ctx, scanResult.Files, analysisOptions(c, types, methods))
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return err
	}

	out, err := outputSvc.New(
		outputSvc.WithFormat(outputSvc.ParseFormat(cfg.Output.Format)),
		outputSvc.WithWriter(c.App.Writer),
		outputSvc.WithColor(cfg.Output.Color),
		outputSvc.WithFile(c.String("output")),
	)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Report(result, outputSvc.ReportOptions{
		Types:   types,
		Methods: methods,
		Ref:     scanResult.Ref,
	}); err != nil {
		return err
	}

	if c.Bool("fail-on-findings") && !result.Empty() {
		return errFindings
	}
	return nil
}

// showProgress reports whether a progress bar can be drawn: stderr must be
// the process's own terminal and debug logs must not be interleaved with it.
func showProgress(c *cli.Context) bool {
	if c.Bool("verbose") || c.App.ErrWriter != os.Stderr {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd())
}
