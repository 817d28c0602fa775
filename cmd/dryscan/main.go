package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/dryscan/internal/logging"
	"github.com/panbanda/dryscan/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// errFindings is returned by the analysis commands when --fail-on-findings
// is set and something was reported.
var errFindings = errors.New("findings reported")

const (
	metaConfig    = "config"
	metaLogger    = "logger"
	metaLogCloser = "logCloser"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, errFindings) {
			os.Exit(2)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "dryscan",
		Usage:     "Find similar types and duplicated methods in C# and Java code",
		Version:   version,
		Metadata:  make(map[string]interface{}),
		Writer:    stdout,
		ErrWriter: stderr,
		ArgsUsage: "[path...]",
		Description: `dryscan compares the member lists of every class, record and struct and
the normalized bodies of every method, and reports pairs that are within
an edit distance threshold of each other.

Running dryscan without a command is the same as "dryscan analyze".`,
		Flags:  append(globalFlags(), analysisFlags()...),
		Before: before,
		After:  after,
		Action: func(c *cli.Context) error {
			return runAnalysis(c, true, true)
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			typesCmd(),
			methodsCmd(),
			watchCmd(),
			mcpCmd(),
			initCmd(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file (TOML, YAML, or JSON)",
			EnvVars: []string{"DRYSCAN_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, markdown, json, yaml, toon",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log at debug level",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Write logs to a rotating file instead of stderr",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// before loads the configuration, applies the global flags to it and
// installs the logger.
func before(c *cli.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault()
	}
	if err != nil {
		return err
	}

	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, closer := logging.Configure(logging.Options{
		Config:  cfg.Log,
		Verbose: c.Bool("verbose"),
		Stderr:  c.App.ErrWriter,
	})

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = logger
	c.App.Metadata[metaLogCloser] = closer
	return nil
}

func after(c *cli.Context) error {
	if closer, ok := c.App.Metadata[metaLogCloser].(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func getConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func getLogger(c *cli.Context) *slog.Logger {
	if logger, ok := c.App.Metadata[metaLogger].(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
