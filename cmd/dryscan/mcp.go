package main

import (
	"fmt"

	"github.com/panbanda/dryscan/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the analysis
as tools that LLMs can invoke. Logs go to stderr or the configured log file.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "dryscan": {
        "command": "dryscan",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze         Similar types and DRY violations
  - similar_types   Similar types only
  - dry_violations  DRY violations only`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry manifest (server.json)",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(data))
					return err
				},
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version,
		mcpserver.WithConfig(getConfig(c)),
		mcpserver.WithLogger(getLogger(c)),
	)
	return server.Run(c.Context)
}
