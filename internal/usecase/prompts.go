package usecase

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"coderag/internal/domain"
)

//go:embed templates/*.tmpl
var promptTemplates embed.FS

var prompts = template.Must(template.ParseFS(promptTemplates, "templates/*.tmpl"))

// ContextSeparator sits between retrieved snippets in a prompt.
const ContextSeparator = "\n\n---\n\n"

type promptData struct {
	Query    string
	Contexts string
}

// BuildPrompt renders the template for taskType. Any task other than
// microservice analysis gets the standard code question template.
func BuildPrompt(taskType, query string, contexts []string) (string, error) {
	name := "standard.tmpl"
	if taskType == domain.TaskMicroserviceAnalysis {
		name = "microservice_analysis.tmpl"
	}

	var sb strings.Builder
	err := prompts.ExecuteTemplate(&sb, name, promptData{
		Query:    query,
		Contexts: strings.Join(contexts, ContextSeparator),
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}
