// Package mcp exposes the classifier, the token counter and the generation
// pipeline as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/readmegen/readmegen/internal/classifier"
	"github.com/readmegen/readmegen/internal/pipeline"
	"github.com/readmegen/readmegen/internal/prompt"
)

// Runner runs the full generation pipeline for one repository.
type Runner interface {
	Run(ctx context.Context, url string) (*pipeline.State, error)
}

// ClassifierFactory builds a classifier for a mode and profile. Empty
// strings mean the configured defaults.
type ClassifierFactory func(mode, profile string) (classifier.Classifier, error)

// Deps are the components the tools operate on.
type Deps struct {
	Classifiers ClassifierFactory
	Tokenizer   *prompt.Tokenizer
	// Model and Limit describe the generation budget count_tokens reports against.
	Model    string
	Limit    int
	Pipeline Runner
}

// NewServer creates the MCP server with every tool registered.
func NewServer(version string, d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"readmegen",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	listTool := NewListEssentialFilesTool(d.Classifiers)
	s.AddTool(listTool.Definition(), listTool.Handle)

	countTool := NewCountTokensTool(d.Tokenizer, d.Model, d.Limit)
	s.AddTool(countTool.Definition(), countTool.Handle)

	if d.Pipeline != nil {
		genTool := NewGenerateReadmeTool(d.Pipeline)
		s.AddTool(genTool.Definition(), genTool.Handle)
	}

	return s
}

// Serve runs s over stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `readmegen selects the files that best describe a repository and writes a README from them.
Use list_essential_files to preview the selection for a local checkout, count_tokens to check a prompt against the generation budget, and generate_readme to run the whole pipeline for a repository URL.`
