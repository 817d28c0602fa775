package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptDef is one embedded prompt; the name is the file name without .md.
type promptDef struct {
	Name        string
	Description string `yaml:"description"`
	Body        string `yaml:"-"`
}

// loadPrompts reads every embedded prompt in directory order.
func loadPrompts() ([]promptDef, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}

	var defs []promptDef
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading prompt %s: %w", entry.Name(), err)
		}
		def := parsePrompt(content)
		def.Name = strings.TrimSuffix(entry.Name(), ".md")
		defs = append(defs, def)
	}
	return defs, nil
}

// parsePrompt splits a leading YAML block (between "---" lines) off content.
// Content without well-formed frontmatter is returned whole as the body.
func parsePrompt(content []byte) promptDef {
	whole := promptDef{Body: string(content)}
	rest, ok := bytes.CutPrefix(content, []byte("---\n"))
	if !ok {
		return whole
	}
	header, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return whole
	}

	var def promptDef
	if err := yaml.Unmarshal(header, &def); err != nil {
		return whole
	}
	def.Body = strings.TrimPrefix(string(body), "\n")
	return def
}

func (s *Server) registerPrompts() {
	defs, err := loadPrompts()
	if err != nil {
		s.logger.Warn("cannot load prompts", "error", err)
		return
	}
	for _, def := range defs {
		s.server.AddPrompt(&mcp.Prompt{
			Name:        def.Name,
			Description: def.Description,
		}, promptHandler(def))
	}
}

func promptHandler(def promptDef) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: def.Description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: def.Body}},
			},
		}, nil
	}
}
