package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readmegen/readmegen/internal/prompt"
)

// ListEssentialFilesTool handles the list_essential_files tool.
type ListEssentialFilesTool struct {
	classifiers ClassifierFactory
}

// NewListEssentialFilesTool creates a ListEssentialFilesTool.
func NewListEssentialFilesTool(f ClassifierFactory) *ListEssentialFilesTool {
	return &ListEssentialFilesTool{classifiers: f}
}

// Definition returns the MCP tool definition for registration.
func (t *ListEssentialFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_essential_files",
		mcp.WithDescription("List the files of a local directory that would be sent to the README generator."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory to classify."),
		),
		mcp.WithString("mode",
			mcp.Description("Selection strategy: static or oracle. Defaults to the configured mode."),
		),
		mcp.WithString("profile",
			mcp.Description("Static rule profile: java-spring, go, node, python or auto."),
		),
	)
}

// Handle processes the list_essential_files tool call.
func (t *ListEssentialFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("not a directory: %s", root)), nil
	}

	c, err := t.classifiers(req.GetString("mode", ""), req.GetString("profile", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths, err := c.Classify(ctx, root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("No essential files found."), nil
	}

	absRoot, _ := filepath.Abs(root)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d essential files:\n", len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(absRoot, p); err == nil {
			p = filepath.ToSlash(rel)
		}
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// CountTokensTool handles the count_tokens tool.
type CountTokensTool struct {
	tokenizer *prompt.Tokenizer
	model     string
	limit     int
}

// NewCountTokensTool creates a CountTokensTool reporting against model and limit.
func NewCountTokensTool(tok *prompt.Tokenizer, model string, limit int) *CountTokensTool {
	return &CountTokensTool{tokenizer: tok, model: model, limit: limit}
}

// Definition returns the MCP tool definition for registration.
func (t *CountTokensTool) Definition() mcp.Tool {
	return mcp.NewTool("count_tokens",
		mcp.WithDescription("Count the tokens of a text under a model's tokenizer and compare them with the generation limit."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to count."),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier. Defaults to the configured generation model."),
		),
	)
}

// Handle processes the count_tokens tool call.
func (t *CountTokensTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	model := req.GetString("model", t.model)

	count, err := prompt.NewBudget(t.tokenizer, model, t.limit).Check(text)
	switch {
	case errors.Is(err, prompt.ErrBudgetExceeded):
		return mcp.NewToolResultText(fmt.Sprintf("%d tokens for %s: over the limit of %d", count, model, t.limit)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("count failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d tokens for %s: within the limit of %d", count, model, t.limit)), nil
}

// GenerateReadmeTool handles the generate_readme tool.
type GenerateReadmeTool struct {
	runner Runner
}

// NewGenerateReadmeTool creates a GenerateReadmeTool.
func NewGenerateReadmeTool(r Runner) *GenerateReadmeTool {
	return &GenerateReadmeTool{runner: r}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateReadmeTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_readme",
		mcp.WithDescription(
			"Clone a repository, select its essential files and generate a README from them. "+
				"Returns the README text and where it was written.",
		),
		mcp.WithString("repo_url",
			mcp.Required(),
			mcp.Description("Repository to document: an https URL, a file:// URL or a local path."),
		),
	)
}

// Handle processes the generate_readme tool call.
func (t *GenerateReadmeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("repo_url")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo_url"), nil
	}

	state, err := t.runner.Run(ctx, url)
	if errors.Is(err, prompt.ErrBudgetExceeded) {
		return mcp.NewToolResultError(fmt.Sprintf("%v; try the static mode or a tighter profile", err)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	var sb strings.Builder
	if state.ReadmeWritten {
		fmt.Fprintf(&sb, "README written to %s\n", state.ReadmePath)
	} else {
		sb.WriteString("README generated but could not be written to disk\n")
	}
	fmt.Fprintf(&sb, "Essential files: %s\n\n", strings.Join(state.EssentialNames, ", "))
	sb.WriteString(state.ReadmeBody)
	return mcp.NewToolResultText(sb.String()), nil
}
