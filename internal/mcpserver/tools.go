package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/dryscan/internal/output"
	"github.com/panbanda/dryscan/internal/service/analysis"
	scannerSvc "github.com/panbanda/dryscan/internal/service/scanner"
)

// AnalyzeInput is the input shared by all tools.
type AnalyzeInput struct {
	Paths         []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format        string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
	Ref           string   `json:"ref,omitempty" jsonschema:"Git revision to analyze instead of the working tree (branch, tag or commit). Takes a single path."`
	TypeThreshold *int     `json:"type_threshold,omitempty" jsonschema:"Maximum member distance reported for similar types. Default 2."`
	DRYThreshold  *int     `json:"dry_threshold,omitempty" jsonschema:"Maximum body distance reported as a DRY violation. Default 0."`
	BodyPolicy    string   `json:"body_policy,omitempty" jsonschema:"Method body comparison: compact (default) or tokens."`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	case "yaml", "yml":
		return output.FormatYAML
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// handler returns a tool handler running the selected passes.
func (s *Server) handler(types, methods bool) mcp.ToolHandlerFor[AnalyzeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
		return s.analyze(ctx, input, types, methods)
	}
}

func (s *Server) analyze(ctx context.Context, input AnalyzeInput, types, methods bool) (*mcp.CallToolResult, any, error) {
	format := getFormat(input)
	paths := getPaths(input)

	scanner := scannerSvc.New(scannerSvc.WithConfig(s.config))
	var scanResult *scannerSvc.ScanResult
	var err error
	if input.Ref != "" {
		if len(paths) > 1 {
			return toolError(fmt.Sprintf("ref analysis takes a single path, got %d", len(paths)))
		}
		scanResult, err = scanner.ScanRef(paths[0], input.Ref)
	} else {
		scanResult, err = scanner.ScanPaths(paths)
	}
	if err != nil {
		return toolError(err.Error())
	}

	if len(scanResult.Files) == 0 {
		return toolError("no source files found")
	}

	svc := analysis.New(
		analysis.WithConfig(s.config),
		analysis.WithSource(scanResult.Source),
		analysis.WithLogger(s.logger),
	)
	defer svc.Close()

	result, err := svc.AnalyzeFiles(ctx, scanResult.Files, analysis.Options{
		TypeThreshold: input.TypeThreshold,
		DRYThreshold:  input.DRYThreshold,
		Types:         &types,
		Methods:       &methods,
		BodyPolicy:    input.BodyPolicy,
	})
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(&output.FindingsReport{
		Result:    result,
		ShowTypes: types,
		ShowDRY:   methods,
		Ref:       input.Ref,
	}, format)
}
