package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

const essentialFilesText = `You are an expert in creating software documentation.
Given the following repository file names, identify the essential files
that would contribute the most useful information to write a README file.
Format the output list of the files as an array of strings. For example: ["User.java", "UserController.java"]

Repository files:
{{.Files}}
`

const readmeText = `You are an expert in software documentation and code analysis.
I am providing you with the contents of several files from a {{.ProjectKind}} project.
Analyze these files and generate a comprehensive README file that includes:
    - A project overview
    - Installation instructions
    - Usage examples
    - Details on configuration and key components extracted from the source code

The files provided are:
{{.Content}}

Generate a well-structured and detailed README file. Do not include changelog, licence, and contributing sections.
`

var (
	essentialFilesTmpl = template.Must(template.New("essential").Parse(essentialFilesText))
	readmeTmpl         = template.Must(template.New("readme").Parse(readmeText))
)

// EssentialFilesPrompt asks the oracle to pick essential files from names.
// The names are embedded as a JSON array so the model sees the same shape it
// is asked to answer with.
func EssentialFilesPrompt(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("prompt: encode file names: %w", err)
	}
	return render(essentialFilesTmpl, struct{ Files string }{string(encoded)})
}

// ReadmePrompt wraps merged file content in the README-generation instructions.
// An empty projectKind reads as "github".
func ReadmePrompt(projectKind, merged string) (string, error) {
	if projectKind == "" {
		projectKind = "github"
	}
	return render(readmeTmpl, struct {
		ProjectKind string
		Content     string
	}{projectKind, merged})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
